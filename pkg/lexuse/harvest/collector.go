// Package harvest turns raw corpus documents into deduplicated usage-example
// candidates tied to document provenance.
package harvest

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dpriskorn/LexUse/pkg/lexuse/lexeme"
	"github.com/dpriskorn/LexUse/pkg/lexuse/text"
)

// Document is one raw corpus hit for a word. It is discarded after
// candidate extraction.
type Document struct {
	ID        string
	Summary   string
	Published time.Time
}

// Candidate is one accepted sentence with the provenance of the document it
// was first seen in. Candidates are never mutated after creation.
type Candidate struct {
	Sentence   string
	DocumentID string
	Published  time.Time
}

// Stats reports aggregate counts from one collection run, for observability
// only.
type Stats struct {
	Documents  int // documents scanned
	Substring  int // summaries containing the word at all
	ExactBound int // summaries containing the space- or markup-bounded word
	Sentences  int // sentences accepted by the filter across all summaries
}

// Collector extracts candidates from documents using the text pipeline.
type Collector struct {
	filter *text.Filter
	log    *zap.SugaredLogger
}

// NewCollector creates a Collector around the given filter.
func NewCollector(filter *text.Filter, log *zap.SugaredLogger) *Collector {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Collector{filter: filter, log: log}
}

// Collect maps each document's summary through the normalization, segmenting
// and filtering pipeline and merges the results, keyed by sentence text.
// Candidates from different documents that clean up to the identical
// sentence collapse into one entry; the first document encountered wins the
// provenance. Summaries that do not contain the bounded word are skipped
// before the per-sentence pipeline runs.
func (c *Collector) Collect(docs []Document, task lexeme.FormTask) (map[string]Candidate, Stats) {
	var stats Stats
	candidates := make(map[string]Candidate)

	for _, doc := range docs {
		stats.Documents++
		if !strings.Contains(doc.Summary, task.Word) {
			c.log.Debugw("word not present in summary, skipping",
				"word", task.Word, "document", doc.ID)
			continue
		}
		stats.Substring++

		if !strings.Contains(doc.Summary, task.SpaceBounded()) &&
			!strings.Contains(doc.Summary, task.MarkupBounded()) {
			c.log.Debugw("no exact hit in summary, skipping",
				"word", task.Word, "document", doc.ID)
			continue
		}
		stats.ExactBound++

		sentences := text.Sentences(text.Normalize(doc.Summary))
		accepted, filterStats := c.filter.Run(sentences, task)
		stats.Sentences += filterStats.Accepted
		c.log.Debugw("filtered summary",
			"document", doc.ID,
			"examined", filterStats.Examined,
			"accepted", filterStats.Accepted)

		for _, sentence := range accepted {
			if _, seen := candidates[sentence]; seen {
				continue
			}
			candidates[sentence] = Candidate{
				Sentence:   sentence,
				DocumentID: doc.ID,
				Published:  doc.Published,
			}
		}
	}

	c.log.Infow("collected candidates",
		"form", task.Word,
		"documents", stats.Documents,
		"substring_hits", stats.Substring,
		"exact_hits", stats.ExactBound,
		"candidates", len(candidates))
	return candidates, stats
}
