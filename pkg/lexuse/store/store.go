// Package store defines the decision-history store: a record of every
// approval decision the operator made, keyed by form and sentence, so a
// later run can skip candidates that were already rejected.
package store

import (
	"context"
	"time"
)

// Store persists runs and approval decisions. The pipeline works unchanged
// without one; the store only supplies the skip-seen shortcut and an audit
// trail.
type Store interface {
	Close() error

	// Runs
	BeginRun(ctx context.Context, r Run) error

	// Decisions
	RecordDecision(ctx context.Context, d Decision) error
	LastDecision(ctx context.Context, formID, sentence string) (Decision, bool, error)
	DecisionsByRun(ctx context.Context, runID string) ([]Decision, error)
}

// Run is one invocation of the harvester.
type Run struct {
	ID        string // ULID
	Language  string
	StartedAt time.Time
}

// Decision is one recorded approval decision.
type Decision struct {
	RunID      string
	FormID     string
	Sentence   string
	Decision   string // "accept", "reject" or "skip-form"
	DocumentID string
	DecidedAt  time.Time
}
