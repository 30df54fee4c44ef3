package text

import (
	"strings"

	"go.uber.org/zap"

	"github.com/dpriskorn/LexUse/pkg/lexuse/lexeme"
)

// DefaultExclusions lists administrative jargon that disqualifies a sentence
// as a dictionary example. All terms are matched case-insensitively; the
// acronyms are padded with spaces to avoid mid-word false positives.
var DefaultExclusions = []string{
	"SAMMANFATTNING",
	"BETÄNKANDE",
	"UTSKOTT",
	"MOTION",
	" EG ",
	" EU ",
	"RIKSDAGEN",
}

// Filter applies the acceptance rules to raw candidate sentences. The zero
// value is not usable; construct with NewFilter.
type Filter struct {
	minWords   int
	maxWords   int
	exclusions []string
	nearDup    int // Levenshtein distance threshold, 0 disables
	log        *zap.SugaredLogger
}

// FilterOptions configures a Filter.
type FilterOptions struct {
	MinWordCount int
	MaxWordCount int
	// Exclusions overrides DefaultExclusions when non-nil.
	Exclusions []string
	// NearDuplicateDistance > 0 drops a sentence whose edit distance to an
	// earlier accepted sentence is at or below the threshold.
	NearDuplicateDistance int
	Logger                *zap.SugaredLogger
}

// NewFilter creates a Filter with the given options.
func NewFilter(opts FilterOptions) *Filter {
	if opts.MinWordCount <= 0 {
		opts.MinWordCount = 5
	}
	if opts.MaxWordCount <= 0 {
		opts.MaxWordCount = 15
	}
	exclusions := opts.Exclusions
	if exclusions == nil {
		exclusions = DefaultExclusions
	}
	upper := make([]string, len(exclusions))
	for i, term := range exclusions {
		upper[i] = strings.ToUpper(term)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Filter{
		minWords:   opts.MinWordCount,
		maxWords:   opts.MaxWordCount,
		exclusions: upper,
		nearDup:    opts.NearDuplicateDistance,
		log:        log,
	}
}

// Stats reports what the filter did with one batch of sentences. The counts
// are diagnostics only and never gate correctness.
type Stats struct {
	Examined       int
	Duplicates     int
	LengthRejected int
	Excluded       int
	NoExactMatch   int
	NearDuplicates int
	Accepted       int
}

// Run filters one batch of raw sentences for the given form. Sentences pass
// when their whitespace-delimited word count lies within the configured
// window, they contain no exclusion term and they contain the form's bounded
// word. Accepted sentences come back display-ready: abbreviations restored,
// hyphenation markers and ellipses stripped, blank runs collapsed.
func (f *Filter) Run(sentences []string, task lexeme.FormTask) ([]string, Stats) {
	var stats Stats
	var accepted []string

	seen := make(map[string]struct{}, len(sentences))
	for _, sentence := range sentences {
		stats.Examined++
		if _, dup := seen[sentence]; dup {
			stats.Duplicates++
			continue
		}
		seen[sentence] = struct{}{}

		words := CountWords(sentence)
		if words < f.minWords || words > f.maxWords {
			stats.LengthRejected++
			f.log.Debugw("sentence outside length window",
				"words", words, "sentence", sentence)
			continue
		}

		if term, found := f.excludedTerm(sentence); found {
			stats.Excluded++
			f.log.Debugw("sentence contains excluded term",
				"term", strings.TrimSpace(term), "sentence", sentence)
			continue
		}

		if !strings.Contains(sentence, task.SpaceBounded()) &&
			!strings.Contains(sentence, task.MarkupBounded()) {
			stats.NoExactMatch++
			continue
		}

		accepted = append(accepted, cleanSentence(sentence))
	}

	if f.nearDup > 0 {
		accepted, stats.NearDuplicates = dropNearDuplicates(accepted, f.nearDup)
	}
	stats.Accepted = len(accepted)
	return accepted, stats
}

func (f *Filter) excludedTerm(sentence string) (string, bool) {
	upper := strings.ToUpper(sentence)
	for _, term := range f.exclusions {
		if strings.Contains(upper, term) {
			return term, true
		}
	}
	return "", false
}

// cleanSentence makes an accepted sentence display-ready.
func cleanSentence(sentence string) string {
	s := RestoreAbbreviations(sentence)
	s = strings.ReplaceAll(s, "\n", " ")
	// The corpus data is sometimes soft-hyphenated across line breaks;
	// after newline collapsing the marker is always "- ".
	s = strings.ReplaceAll(s, "- ", "")
	s = strings.ReplaceAll(s, "…", "")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// CountWords counts whitespace-delimited tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// dropNearDuplicates keeps the first of any pair of sentences whose edit
// distance is at or below the threshold.
func dropNearDuplicates(sentences []string, threshold int) ([]string, int) {
	var kept []string
	dropped := 0
	for _, s := range sentences {
		isDup := false
		for _, k := range kept {
			if levenshtein(s, k) <= threshold {
				isDup = true
				break
			}
		}
		if isDup {
			dropped++
			continue
		}
		kept = append(kept, s)
	}
	return kept, dropped
}

// levenshtein computes the edit distance between two strings by rune.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
