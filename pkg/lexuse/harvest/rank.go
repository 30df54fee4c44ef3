package harvest

import (
	"sort"
	"unicode/utf8"
)

// Rank orders a merged candidate set shortest-first: shorter sentences are
// assumed more usable as dictionary examples. Ties break lexicographically
// so presentation order is deterministic.
func Rank(candidates map[string]Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		li := utf8.RuneCountInString(out[i].Sentence)
		lj := utf8.RuneCountInString(out[j].Sentence)
		if li != lj {
			return li < lj
		}
		return out[i].Sentence < out[j].Sentence
	})
	return out
}
