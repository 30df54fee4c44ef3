package text

import "regexp"

// sentencePattern matches a maximal substring starting at an uppercase
// letter and ending at the first following terminal mark, scanning across
// line boundaries. \p{Lu} keeps non-ASCII capitals (Å, Ä, Ö) as valid
// sentence starts.
var sentencePattern = regexp.MustCompile(`\p{Lu}[^.!?]*[.!?]`)

// Sentences splits normalized text into raw candidate sentences. A text
// with no terminal punctuation after a capital yields zero sentences, which
// is valid output, not an error.
func Sentences(normalized string) []string {
	return sentencePattern.FindAllString(normalized, -1)
}
