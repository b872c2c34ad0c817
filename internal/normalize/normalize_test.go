package normalize

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "page of marker stripped",
			in:   "Page 1 of 3\nAlpha beta",
			want: "Alpha beta",
		},
		{
			name: "page range marker stripped",
			in:   "intro\nPage 2-7\noutro",
			want: "intro outro",
		},
		{
			name: "bare page marker stripped",
			in:   "Page 4\ncontent here",
			want: "content here",
		},
		{
			name: "numeric noise line stripped",
			in:   "alpha\n12 34 5-6\nbeta",
			want: "alpha beta",
		},
		{
			name: "table rule line stripped",
			in:   "head\n---|---|---\nrow",
			want: "head row",
		},
		{
			name: "newline runs become single space",
			in:   "a\n\n\nb\nc",
			want: "a b c",
		},
		{
			name: "tabs and nbsp collapse",
			in:   "gamma\t\tdelta epsilon",
			want: "gamma delta epsilon",
		},
		{
			name: "non-ascii stripped",
			in:   "café résumé — ok",
			want: "caf rsum ok",
		},
		{
			name: "whitespace only",
			in:   " \n\t \n ",
			want: "",
		},
		{
			name: "currency-only line reduces to numeric noise",
			in:   "€100",
			want: "",
		},
		{
			name: "unicode digits glue into numeric noise",
			in:   "1½2",
			want: "",
		},
		{
			name: "currency amount inside prose survives",
			in:   "budget of €100 per unit",
			want: "budget of 100 per unit",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Three extracted PDF pages joined by page-boundary newlines must reduce to
// one clean logical line.
func TestClean_MultiPageDocument(t *testing.T) {
	pages := "Page 1 of 3\nAlpha beta" + "\n" + "gamma\t\tdelta" + "\n" + "Page 3 of 3\nepsilon"

	got := Clean(pages)
	want := "Alpha beta gamma delta epsilon"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestClean_Idempotent(t *testing.T) {
	samples := []string{
		"Page 1 of 3\nAlpha beta\ngamma\t\tdelta",
		"plain sentence already clean",
		"café — 12 34\n---\ntext here",
		"  spaced   out\n\n\ntext  ",
		"€100",
		"1½2",
		"é1 2",
		"€100\ntotal cost",
		"",
	}

	for _, s := range samples {
		once := Clean(s)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", s, once, twice)
		}
	}
}
