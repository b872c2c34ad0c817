// Package normalize cleans extracted document text into a canonical
// single-line string suitable for chunking and retrieval.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// Page-number artifacts, longest pattern first so "Page 1 of 3" is not
	// left as a dangling "of 3" by the shorter patterns.
	pageOfRe    = regexp.MustCompile(`(?i)page\s+\d+\s+of\s+\d+`)
	pageRangeRe = regexp.MustCompile(`(?i)page\s+\d+\s*-\s*\d+`)
	pageNumRe   = regexp.MustCompile(`(?i)page\s+\d+`)

	// Residual tabular noise: lines of digits/dashes, and table rules of
	// dashes/pipes.
	numericLineRe = regexp.MustCompile(`(?m)^[\d\s.\-]+$`)
	ruleLineRe    = regexp.MustCompile(`(?m)^[\s\-|+=_]+$`)

	newlineRunRe = regexp.MustCompile(`\n+`)
	spaceRunRe   = regexp.MustCompile(` {2,}`)
)

// Clean converts extracted text into one canonical logical line.
// Pure and idempotent: Clean(Clean(s)) == Clean(s).
//
// The pass sequence runs to a fixed point: a later pass can expose new
// noise for an earlier one (stripping non-ASCII from "\u20ac100" leaves a purely
// numeric string), so the sequence repeats until the text is stable. Every
// changing iteration shortens the text, so the loop terminates.
func Clean(s string) string {
	for {
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

// Pass order matters within one iteration: page markers and noise lines are
// matched while line structure still exists, newlines are collapsed only
// afterwards.
func cleanOnce(s string) string {
	// 1. Page-number artifacts.
	s = pageOfRe.ReplaceAllString(s, "")
	s = pageRangeRe.ReplaceAllString(s, "")
	s = pageNumRe.ReplaceAllString(s, "")

	// 2. Purely numeric/dash lines and table-rule lines.
	s = numericLineRe.ReplaceAllString(s, "")
	s = ruleLineRe.ReplaceAllString(s, "")

	// 3. Newline runs to one newline, then all newlines to spaces.
	s = newlineRunRe.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\n", " ")

	// 4. Tabs and non-breaking spaces to regular spaces.
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	// 5. Space runs to one.
	s = spaceRunRe.ReplaceAllString(s, " ")

	// 6. Strip non-ASCII. Removal can fuse the surrounding spaces into a
	// run, so collapse once more before trimming.
	s = stripNonASCII(s)
	s = spaceRunRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

func stripNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
