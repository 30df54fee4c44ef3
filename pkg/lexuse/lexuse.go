// Package lexuse wires the sentence-extraction pipeline to the external
// collaborators and drives the interactive approval workflow, one word form
// at a time.
package lexuse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/dpriskorn/LexUse/pkg/lexuse/config"
	"github.com/dpriskorn/LexUse/pkg/lexuse/harvest"
	"github.com/dpriskorn/LexUse/pkg/lexuse/internalerr"
	"github.com/dpriskorn/LexUse/pkg/lexuse/lexeme"
	"github.com/dpriskorn/LexUse/pkg/lexuse/prompt"
	"github.com/dpriskorn/LexUse/pkg/lexuse/sense"
	"github.com/dpriskorn/LexUse/pkg/lexuse/store"
	"github.com/dpriskorn/LexUse/pkg/lexuse/text"
)

// QuerySource supplies the batch of (entry, form) pairs to evaluate.
type QuerySource interface {
	FormTasks(ctx context.Context) ([]lexeme.FormTask, error)
}

// Corpus returns raw documents for a query word.
type Corpus interface {
	Fetch(ctx context.Context, word string) ([]harvest.Document, error)
}

// Recorder persists an approved example as a referenced statement.
type Recorder interface {
	AddUsageExample(ctx context.Context, ex lexeme.Example) error
	Watch(ctx context.Context, entryID string) error
}

// Options configures a Harvester instance.
type Options struct {
	Queries  QuerySource
	Senses   sense.Source
	Corpus   Corpus
	Recorder Recorder
	// History is optional; without it no decisions are recorded and the
	// skip-seen shortcut is off.
	History  store.Store
	Settings *config.Settings

	In     io.Reader
	Out    io.Writer
	Logger *zap.SugaredLogger
}

// Outcome is the terminal state of one form evaluation.
type Outcome int

const (
	// OutcomeExhausted means no example was recorded for the form.
	OutcomeExhausted Outcome = iota
	// OutcomeRecorded means exactly one example was recorded.
	OutcomeRecorded
)

// Harvester evaluates one form fully before starting the next. There is no
// shared mutable state between form evaluations.
type Harvester struct {
	queries  QuerySource
	corpus   Corpus
	recorder Recorder
	history  store.Store
	cfg      *config.Settings

	collector *harvest.Collector
	disambig  *sense.Disambiguator
	prompt    *prompt.Prompter
	out       io.Writer
	log       *zap.SugaredLogger

	runID string
}

// New creates a Harvester with the given dependencies.
func New(opts Options) (*Harvester, error) {
	if opts.Queries == nil || opts.Senses == nil || opts.Corpus == nil || opts.Recorder == nil {
		return nil, internalerr.ErrInvalidInput
	}
	cfg := opts.Settings
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	exclusions := text.DefaultExclusions
	if cfg.ExclusionList != "" {
		list, err := config.LoadExclusionList(cfg.ExclusionList)
		if err != nil {
			return nil, fmt.Errorf("load exclusion list: %w", err)
		}
		exclusions = list.Terms
	}

	filter := text.NewFilter(text.FilterOptions{
		MinWordCount:          cfg.MinWordCount,
		MaxWordCount:          cfg.MaxWordCount,
		Exclusions:            exclusions,
		NearDuplicateDistance: cfg.NearDuplicateDistance,
		Logger: stageLogger(log, "filter",
			cfg.Debug.Sentences || cfg.Debug.Excludes || cfg.Debug.Duplicates),
	})

	p := prompt.New(opts.In, opts.Out)
	return &Harvester{
		queries:   opts.Queries,
		corpus:    opts.Corpus,
		recorder:  opts.Recorder,
		history:   opts.History,
		cfg:       cfg,
		collector: harvest.NewCollector(filter, stageLogger(log, "summaries", cfg.Debug.Summaries)),
		disambig:  sense.New(opts.Senses, p, opts.Out, stageLogger(log, "senses", cfg.Debug.Senses)),
		prompt:    p,
		out:       opts.Out,
		log:       log,
	}, nil
}

// stageLogger returns a named child logger. Stages whose debug toggle is
// off get their debug output raised away even when the root logger runs at
// debug level.
func stageLogger(log *zap.SugaredLogger, name string, debug bool) *zap.SugaredLogger {
	if debug {
		return log.Named(name)
	}
	return log.Named(name).WithOptions(zap.IncreaseLevel(zap.InfoLevel))
}

// Run executes one full harvesting session: introduction, task fetch,
// random no-repeat traversal, one form evaluated end-to-end at a time.
// Transport-level failures abort the run; empty-result conditions do not.
func (h *Harvester) Run(ctx context.Context) error {
	ok, err := h.prompt.YesNo(
		"This tool semi-automatically adds usage examples to lexemes with " +
			"both good senses and forms.\nPlease pay attention to the lexical " +
			"category of each form and prefer short, concise examples.\n" +
			"Edited lexemes are added to your watchlist.\nContinue?")
	if err != nil {
		if errors.Is(err, internalerr.ErrCanceled) {
			return nil
		}
		return err
	}
	if !ok {
		return nil
	}

	if err := h.beginRun(ctx); err != nil {
		return err
	}

	fmt.Fprintln(h.out, "Fetching forms to work on...")
	tasks, err := h.queries.FormTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(h.out,
			"No forms with both a qualifying sense and grammatical features "+
				"and without a usage example were found.")
		return nil
	}

	fmt.Fprintf(h.out, "Got %d suitable forms. Going through them at random.\n", len(tasks))
	rand.Shuffle(len(tasks), func(i, j int) {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	})

	for _, task := range tasks {
		if _, err := h.EvaluateForm(ctx, task); err != nil {
			return err
		}
	}

	fmt.Fprintln(h.out, "No more forms. Run again with a higher query offset to continue.")
	return nil
}

func (h *Harvester) beginRun(ctx context.Context) error {
	h.runID = ulid.Make().String()
	if h.history == nil {
		return nil
	}
	return h.history.BeginRun(ctx, store.Run{
		ID:        h.runID,
		Language:  h.cfg.LanguageCode,
		StartedAt: time.Now(),
	})
}

// EvaluateForm runs the full pipeline for one (entry, form) task: corpus
// fetch, candidate collection, shortest-first presentation, disambiguation
// and recording. It stops at the first accepted or skipped candidate.
func (h *Harvester) EvaluateForm(ctx context.Context, task lexeme.FormTask) (Outcome, error) {
	fmt.Fprintf(h.out, "\nTrying to find examples for the %s form %q (%s)\n",
		task.Category, task.Word, task.FormID)

	fmt.Fprintln(h.out, "Downloading from the corpus API...")
	docs, err := h.corpus.Fetch(ctx, task.Word)
	if err != nil {
		return OutcomeExhausted, err
	}

	candidates, _ := h.collector.Collect(docs, task)
	ranked := harvest.Rank(candidates)
	fmt.Fprintf(h.out, "Found %d suitable sentences in the corpus.\n", len(ranked))

	for i, candidate := range ranked {
		if h.seenRejection(ctx, task, candidate) {
			fmt.Fprintf(h.out, "Skipping a sentence rejected in an earlier run.\n")
			continue
		}

		fmt.Fprintf(h.out, "Presenting sentence %d/%d\n", i+1, len(ranked))
		decision, err := h.prompt.YesNoSkip(fmt.Sprintf(
			"Found the following sentence with %d words. Is it suitable as "+
				"a usage example for the form %q?\n%q",
			text.CountWords(candidate.Sentence), task.Word, candidate.Sentence))
		if err != nil {
			if errors.Is(err, internalerr.ErrCanceled) {
				return OutcomeExhausted, nil
			}
			return OutcomeExhausted, err
		}

		h.recordDecision(ctx, task, candidate, decision)

		switch decision {
		case prompt.SkipForm:
			return OutcomeExhausted, nil

		case prompt.Reject:
			continue

		case prompt.Accept:
			outcome, done, err := h.recordExample(ctx, task, candidate)
			if err != nil {
				return OutcomeExhausted, err
			}
			if done {
				return outcome, nil
			}
			// Disambiguation was canceled: try the next candidate.
		}
	}

	fmt.Fprintf(h.out, "No example was recorded for the form %q.\n", task.Word)
	return OutcomeExhausted, nil
}

// recordExample resolves the sense and writes the example. done is false
// only when the loop should continue with the next candidate.
func (h *Harvester) recordExample(ctx context.Context, task lexeme.FormTask, candidate harvest.Candidate) (Outcome, bool, error) {
	choice, err := h.disambig.Resolve(ctx, task)
	switch {
	case errors.Is(err, internalerr.ErrNoEligibleSense):
		// No candidate of this form can succeed until the entry is fixed.
		return OutcomeExhausted, true, nil
	case errors.Is(err, internalerr.ErrCanceled):
		if h.cfg.StopOnSenseCancel {
			return OutcomeExhausted, true, nil
		}
		return OutcomeExhausted, false, nil
	case err != nil:
		return OutcomeExhausted, true, err
	}

	err = h.recorder.AddUsageExample(ctx, lexeme.Example{
		Sentence:   candidate.Sentence,
		Language:   h.cfg.LanguageCode,
		EntryID:    task.EntryID,
		FormID:     task.FormID,
		SenseID:    choice.SenseID,
		DocumentID: candidate.DocumentID,
		Published:  candidate.Published,
	})
	if err != nil {
		// No retry; the form is left without an example for this run.
		fmt.Fprintf(h.out, "Failed to record the usage example: %v\n", err)
		return OutcomeExhausted, true, nil
	}

	fmt.Fprintf(h.out, "Successfully added usage example to https://www.wikidata.org/entity/%s\n",
		task.EntryID)
	if err := h.recorder.Watch(ctx, task.EntryID); err != nil {
		h.log.Warnw("could not add entry to watchlist", "entry", task.EntryID, "error", err)
	} else {
		fmt.Fprintf(h.out, "Added %s to your watchlist.\n", task.EntryID)
	}
	return OutcomeRecorded, true, nil
}

func (h *Harvester) seenRejection(ctx context.Context, task lexeme.FormTask, candidate harvest.Candidate) bool {
	if h.history == nil || !h.cfg.SkipSeen {
		return false
	}
	last, found, err := h.history.LastDecision(ctx, task.FormID, candidate.Sentence)
	if err != nil {
		h.log.Warnw("history lookup failed", "error", err)
		return false
	}
	return found && last.Decision == prompt.Reject.String()
}

func (h *Harvester) recordDecision(ctx context.Context, task lexeme.FormTask, candidate harvest.Candidate, decision prompt.Decision) {
	if h.history == nil {
		return
	}
	err := h.history.RecordDecision(ctx, store.Decision{
		RunID:      h.runID,
		FormID:     task.FormID,
		Sentence:   candidate.Sentence,
		Decision:   decision.String(),
		DocumentID: candidate.DocumentID,
		DecidedAt:  time.Now(),
	})
	if err != nil {
		h.log.Warnw("could not record decision", "error", err)
	}
}
