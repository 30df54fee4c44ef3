package text

import (
	"testing"

	"github.com/dpriskorn/LexUse/pkg/lexuse/lexeme"
)

func bearTask() lexeme.FormTask {
	return lexeme.FormTask{
		EntryID:  "L1",
		FormID:   "L1-F1",
		Word:     "björnar",
		Category: "noun",
	}
}

func TestFilterAcceptsScenarioSentence(t *testing.T) {
	f := NewFilter(FilterOptions{})
	summary := `Regeringen föreslår att <span class="traff-markering">björnar</span> skyddas bättre i Sverige.`

	accepted, stats := f.Run(Sentences(Normalize(summary)), bearTask())
	if len(accepted) != 1 {
		t.Fatalf("accepted %d sentences, want 1", len(accepted))
	}
	want := "Regeringen föreslår att björnar skyddas bättre i Sverige."
	if accepted[0] != want {
		t.Errorf("accepted %q, want %q", accepted[0], want)
	}
	if got := CountWords(accepted[0]); got != 8 {
		t.Errorf("word count = %d, want 8", got)
	}
	if stats.Accepted != 1 {
		t.Errorf("stats.Accepted = %d, want 1", stats.Accepted)
	}
}

func TestFilterLengthWindow(t *testing.T) {
	f := NewFilter(FilterOptions{MinWordCount: 5, MaxWordCount: 15})
	task := bearTask()

	tests := []struct {
		name     string
		sentence string
		want     bool
	}{
		{"too short", "Vi gillar björnar mycket.", false},
		{"at minimum", "Vi gillar verkligen björnar mycket.", true},
		{"inside window", "Vi vill att björnar skyddas bättre i Sverige.", true},
		{"too long", "Vi vill att björnar skyddas mycket bättre i hela det " +
			"stora avlånga vackra landet Sverige nu genast.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accepted, _ := f.Run([]string{tt.sentence}, task)
			if got := len(accepted) == 1; got != tt.want {
				t.Errorf("accepted = %v, want %v", got, tt.want)
			}
		})
	}
}

// A sentence outside the length window must not abort the rest of the
// batch: later valid sentences still pass.
func TestFilterLengthRejectionIsPerSentence(t *testing.T) {
	f := NewFilter(FilterOptions{})
	batch := []string{
		"För kort om björnar.",
		"Vi vill att björnar skyddas bättre i Sverige.",
	}
	accepted, stats := f.Run(batch, bearTask())
	if len(accepted) != 1 {
		t.Fatalf("accepted %d sentences, want 1", len(accepted))
	}
	if stats.LengthRejected != 1 {
		t.Errorf("stats.LengthRejected = %d, want 1", stats.LengthRejected)
	}
}

func TestFilterExclusionTerms(t *testing.T) {
	f := NewFilter(FilterOptions{})
	task := bearTask()

	// Scenario: RIKSDAGEN anywhere disqualifies regardless of length and
	// word match, case-insensitively.
	batch := []string{
		"Vi vill att RIKSDAGEN skyddar björnar bättre.",
		"Vi vill att riksdagen skyddar björnar bättre.",
	}
	accepted, stats := f.Run(batch, task)
	if len(accepted) != 0 {
		t.Fatalf("accepted %v, want none", accepted)
	}
	if stats.Excluded != 2 {
		t.Errorf("stats.Excluded = %d, want 2", stats.Excluded)
	}
}

func TestFilterExclusionPaddedAcronym(t *testing.T) {
	f := NewFilter(FilterOptions{})
	// " EU " is padded with spaces: "Europas" must not trip it.
	batch := []string{
		"Vi vill att EU skyddar våra björnar bättre.",
		"Vi vill att Europas alla björnar skyddas bättre.",
	}
	accepted, _ := f.Run(batch, bearTask())
	if len(accepted) != 1 {
		t.Fatalf("accepted %d sentences, want 1: %v", len(accepted), accepted)
	}
	if accepted[0] != "Vi vill att Europas alla björnar skyddas bättre." {
		t.Errorf("accepted %q", accepted[0])
	}
}

func TestFilterRejectsSubstringOnlyMatch(t *testing.T) {
	f := NewFilter(FilterOptions{})
	batch := []string{
		"Vi läser gärna om björnarna i Sverige idag.",
	}
	accepted, stats := f.Run(batch, bearTask())
	if len(accepted) != 0 {
		t.Fatalf("accepted %v, want none", accepted)
	}
	if stats.NoExactMatch != 1 {
		t.Errorf("stats.NoExactMatch = %d, want 1", stats.NoExactMatch)
	}
}

func TestFilterDeduplicates(t *testing.T) {
	f := NewFilter(FilterOptions{})
	s := "Vi vill att björnar skyddas bättre i Sverige."
	accepted, stats := f.Run([]string{s, s, s}, bearTask())
	if len(accepted) != 1 {
		t.Fatalf("accepted %d sentences, want 1", len(accepted))
	}
	if stats.Duplicates != 2 {
		t.Errorf("stats.Duplicates = %d, want 2", stats.Duplicates)
	}
}

// Re-running the gates on already-accepted output must not reject it.
func TestFilterIdempotentOnAcceptedOutput(t *testing.T) {
	f := NewFilter(FilterOptions{})
	task := bearTask()
	batch := []string{
		"Vi vill att björnar skyddas bättre i Sverige.",
		"Regeringen vill t.ex. att björnar skyddas här.",
	}
	first, _ := f.Run(batch, task)
	if len(first) == 0 {
		t.Fatal("expected accepted sentences")
	}
	// Mask again so the second pass sees the same shape as the first.
	remasked := make([]string, len(first))
	for i, s := range first {
		remasked[i] = MaskAbbreviations(s)
	}
	second, _ := f.Run(remasked, task)
	if len(second) != len(first) {
		t.Fatalf("second pass accepted %d, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i] != first[i] {
			t.Errorf("second pass changed %q to %q", first[i], second[i])
		}
	}
}

func TestFilterCleansAcceptedSentences(t *testing.T) {
	f := NewFilter(FilterOptions{})
	batch := []string{
		"Vi vill att björnar skyd-\ndas  bättre i Sverige….",
	}
	accepted, _ := f.Run(batch, bearTask())
	if len(accepted) != 1 {
		t.Fatalf("accepted %d sentences, want 1", len(accepted))
	}
	want := "Vi vill att björnar skyddas bättre i Sverige."
	if accepted[0] != want {
		t.Errorf("accepted %q, want %q", accepted[0], want)
	}
}

func TestFilterNearDuplicates(t *testing.T) {
	f := NewFilter(FilterOptions{NearDuplicateDistance: 2})
	batch := []string{
		"Vi vill att björnar skyddas bättre i Sverige.",
		"Vi vill att björnar skyddas bättre i Sverige!?",
		"Regeringen kräver att björnar skyddas i Norrland nu.",
	}
	accepted, stats := f.Run(batch, bearTask())
	if len(accepted) != 2 {
		t.Fatalf("accepted %d sentences, want 2: %v", len(accepted), accepted)
	}
	if stats.NearDuplicates != 1 {
		t.Errorf("stats.NearDuplicates = %d, want 1", stats.NearDuplicates)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"ett", 1},
		{"  flera   ord  här ", 3},
		{"rad\nbrytning också", 3},
	}
	for _, tt := range tests {
		if got := CountWords(tt.in); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"björn", "björn", 0},
		{"björn", "bjørn", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
