// Package sense resolves an approved sentence to exactly one sense of a
// lexical entry, via operator confirmation.
package sense

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/dpriskorn/LexUse/pkg/lexuse/internalerr"
	"github.com/dpriskorn/LexUse/pkg/lexuse/lexeme"
	"github.com/dpriskorn/LexUse/pkg/lexuse/prompt"
)

// Source fetches the qualifying senses of a lexical entry: those carrying a
// concept link and a gloss in the target language. Senses are fetched fresh
// per request, never cached.
type Source interface {
	Senses(ctx context.Context, entryID string) ([]lexeme.SenseChoice, error)
}

// Disambiguator drives the sense-selection dialog.
type Disambiguator struct {
	source Source
	prompt *prompt.Prompter
	out    io.Writer
	log    *zap.SugaredLogger
}

// New creates a Disambiguator. The writer receives the operator-facing
// explanation lines that accompany cancellations.
func New(source Source, p *prompt.Prompter, out io.Writer, log *zap.SugaredLogger) *Disambiguator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Disambiguator{source: source, prompt: p, out: out, log: log}
}

// Resolve determines which sense of the entry the sentence illustrates.
// With exactly one qualifying sense the operator confirms its gloss; "no" is
// a hard cancel, it never falls through to the picker. With several senses
// the operator picks from a numbered menu where 0 or an out-of-range number
// cancels. Zero qualifying senses fail with internalerr.ErrNoEligibleSense
// and a fix-it hint; cancellations surface as internalerr.ErrCanceled.
func (d *Disambiguator) Resolve(ctx context.Context, task lexeme.FormTask) (lexeme.SenseChoice, error) {
	senses, err := d.source.Senses(ctx, task.EntryID)
	if err != nil {
		return lexeme.SenseChoice{}, fmt.Errorf("fetch senses for %s: %w", task.EntryID, err)
	}
	d.log.Debugw("fetched senses", "entry", task.EntryID, "count", len(senses))

	switch len(senses) {
	case 0:
		fmt.Fprintf(d.out,
			"No sense of %s has both a concept link and a %q gloss. "+
				"Please fix the entry manually before retrying.\n",
			task.EntryID, task.Word)
		return lexeme.SenseChoice{}, internalerr.ErrNoEligibleSense

	case 1:
		chosen := senses[0]
		ok, err := d.prompt.YesNo(fmt.Sprintf(
			"Found only one sense. Does this example fit the following gloss?\n%q", chosen.Gloss))
		if err != nil {
			return lexeme.SenseChoice{}, err
		}
		if !ok {
			fmt.Fprintf(d.out,
				"Cancelled adding the sentence as it does not match the only "+
					"sense currently present.\nConsider adding more senses to %s first.\n",
				task.EntryID)
			return lexeme.SenseChoice{}, internalerr.ErrCanceled
		}
		return chosen, nil

	default:
		fmt.Fprintf(d.out, "Found %d senses.\n", len(senses))
		glosses := make([]string, len(senses))
		for i, s := range senses {
			glosses[i] = s.Gloss
		}
		choice, err := d.prompt.Choose(
			"Please choose the sense corresponding to the meaning in the usage example", glosses)
		if err != nil {
			if err == internalerr.ErrCanceled {
				fmt.Fprintln(d.out, "Cancelled adding this sentence.")
			}
			return lexeme.SenseChoice{}, err
		}
		return senses[choice-1], nil
	}
}
