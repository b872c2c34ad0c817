package openai

import (
	"reflect"
	"testing"
)

func TestParseComplianceReport(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantScore  int
		wantIssues []string
		wantErr    bool
	}{
		{
			name:      "score with issues",
			raw:       "Compliance Score: 72%\nIssues:\nMissing insurance certificate\nNo SLA section",
			wantScore: 72,
			wantIssues: []string{
				"Missing insurance certificate",
				"No SLA section",
			},
		},
		{
			name:      "perfect score no issues",
			raw:       "Compliance Score: 100%\nIssues:\n",
			wantScore: 100,
		},
		{
			name:       "dashed issue lines",
			raw:        "Compliance Score: 55%\nIssues:\n- Late delivery penalty absent",
			wantScore:  55,
			wantIssues: []string{"Late delivery penalty absent"},
		},
		{
			name:      "surrounding whitespace",
			raw:       "\n  Compliance Score: 80% \n Issues: \n  Unclear payment terms  \n",
			wantScore: 80,
			wantIssues: []string{
				"Unclear payment terms",
			},
		},
		{
			name:    "missing score line",
			raw:     "Issues:\nSomething",
			wantErr: true,
		},
		{
			name:    "non numeric score",
			raw:     "Compliance Score: high%\nIssues:\n",
			wantErr: true,
		},
		{
			name:    "score out of range",
			raw:     "Compliance Score: 140%\nIssues:\n",
			wantErr: true,
		},
		{
			name:    "empty response",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseComplianceReport(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", got.Score, tt.wantScore)
			}
			if !reflect.DeepEqual(got.Issues, tt.wantIssues) {
				t.Errorf("issues = %v, want %v", got.Issues, tt.wantIssues)
			}
		})
	}
}
