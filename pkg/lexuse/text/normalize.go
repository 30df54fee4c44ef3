// Package text implements the sentence-extraction pipeline: normalization of
// raw corpus summaries, heuristic sentence segmentation and candidate
// filtering. Everything in this package is a pure string transform with no
// side effects.
package text

import (
	"strings"

	"golang.org/x/net/html"
)

// Highlight wrapper emitted by the corpus search API around matched words.
const (
	highlightOpen  = `<span class="traff-markering">`
	highlightClose = `</span>`
)

// abbreviation maps one fixed abbreviation to its reversible placeholder.
// The placeholders use characters that never occur in corpus text, contain
// no uppercase letter and no terminal punctuation, so masking cannot create
// or destroy sentence boundaries.
type abbreviation struct {
	literal     string
	placeholder string
}

// abbreviations is the fixed ordered masking table. Masking and restoring
// walk it in the same order, so restore is an exact left inverse of mask.
// Note "m.m" keeps its final dot unmasked: that dot usually doubles as the
// full stop of the sentence.
var abbreviations = []abbreviation{
	{"t.ex.", "⟦tex⟧"},
	{"m.m", "⟦mm⟧"},
	{"dvs.", "⟦dvs⟧"},
	{"bl.", "⟦bl⟧"},
}

// Normalize prepares a raw summary for sentence segmentation: it deletes the
// known highlight wrapper, strips any residual markup and masks abbreviation
// periods that would otherwise terminate sentences early. Empty input yields
// empty output.
func Normalize(summary string) string {
	if summary == "" {
		return ""
	}
	s := strings.ReplaceAll(summary, highlightOpen, "")
	s = strings.ReplaceAll(s, highlightClose, "")
	s = StripMarkup(s)
	return MaskAbbreviations(s)
}

// MaskAbbreviations replaces each abbreviation from the fixed table with its
// placeholder token.
func MaskAbbreviations(s string) string {
	for _, a := range abbreviations {
		s = strings.ReplaceAll(s, a.literal, a.placeholder)
	}
	return s
}

// RestoreAbbreviations is the inverse of MaskAbbreviations.
func RestoreAbbreviations(s string) string {
	for _, a := range abbreviations {
		s = strings.ReplaceAll(s, a.placeholder, a.literal)
	}
	return s
}

// StripMarkup removes any HTML markup from s and decodes entities, keeping
// only text content. If s contains no markup it comes back unchanged apart
// from entity decoding. A parse failure falls back to the input string.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return buf.String()
}
