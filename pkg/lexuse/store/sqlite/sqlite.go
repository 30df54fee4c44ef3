package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dpriskorn/LexUse/pkg/lexuse/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	language TEXT,
	started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	form_id TEXT NOT NULL,
	sentence TEXT NOT NULL,
	decision TEXT NOT NULL,
	document_id TEXT,
	decided_at TEXT NOT NULL,
	FOREIGN KEY(run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_decisions_form_sentence
	ON decisions(form_id, sentence);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// BeginRun inserts a run row.
func (s *sqliteStore) BeginRun(ctx context.Context, r store.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, language, started_at) VALUES (?, ?, ?)`,
		r.ID, r.Language, r.StartedAt.UTC().Format(time.RFC3339))
	return err
}

// RecordDecision appends one decision row.
func (s *sqliteStore) RecordDecision(ctx context.Context, d store.Decision) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO decisions (run_id, form_id, sentence, decision, document_id, decided_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		d.RunID, d.FormID, d.Sentence, d.Decision, d.DocumentID,
		d.DecidedAt.UTC().Format(time.RFC3339))
	return err
}

// LastDecision returns the most recent decision for a (form, sentence) pair.
func (s *sqliteStore) LastDecision(ctx context.Context, formID, sentence string) (store.Decision, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT run_id, form_id, sentence, decision, document_id, decided_at
FROM decisions
WHERE form_id = ? AND sentence = ?
ORDER BY id DESC
LIMIT 1`, formID, sentence)

	d, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return store.Decision{}, false, nil
	}
	if err != nil {
		return store.Decision{}, false, err
	}
	return d, true, nil
}

// DecisionsByRun returns all decisions of one run in insertion order.
func (s *sqliteStore) DecisionsByRun(ctx context.Context, runID string) ([]store.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, form_id, sentence, decision, document_id, decided_at
FROM decisions
WHERE run_id = ?
ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (store.Decision, error) {
	var d store.Decision
	var decidedAt string
	err := row.Scan(&d.RunID, &d.FormID, &d.Sentence, &d.Decision, &d.DocumentID, &decidedAt)
	if err != nil {
		return store.Decision{}, err
	}
	if t, perr := time.Parse(time.RFC3339, decidedAt); perr == nil {
		d.DecidedAt = t
	}
	return d, nil
}
