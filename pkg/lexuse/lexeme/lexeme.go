// Package lexeme holds the data model shared across the harvesting pipeline:
// the word form under evaluation, the senses of its lexical entry and the
// usage example that is eventually recorded.
package lexeme

import "time"

// FormTask is one (lexical entry, form) pair under evaluation. It is created
// from a query-source row and never mutated afterwards.
type FormTask struct {
	EntryID  string // e.g. "L33980"
	FormID   string // e.g. "L33980-F1"
	Word     string // the exact representation of the form
	Category string // lexical category label, e.g. "noun"
}

// SpaceBounded returns the word padded with spaces. Matching against it
// rejects substring-only hits ("word" inside "wordsmith").
func (t FormTask) SpaceBounded() string {
	return " " + t.Word + " "
}

// MarkupBounded returns the word wrapped in angle brackets, matching a word
// that sits directly between two markup tags in a raw summary.
func (t FormTask) MarkupBounded() string {
	return ">" + t.Word + "<"
}

// SenseChoice is one qualifying sense of a lexical entry. A sense qualifies
// only if it carries a concept link and a gloss in the target language.
type SenseChoice struct {
	SenseID string
	Gloss   string
}

// Example is the tuple handed to the recorder after the operator approved a
// sentence and a sense.
type Example struct {
	Sentence   string
	Language   string // language code of the sentence, e.g. "sv"
	EntryID    string
	FormID     string
	SenseID    string
	DocumentID string
	Published  time.Time
}
