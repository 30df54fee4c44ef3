// Package prompt implements the line-based operator prompts: yes/no,
// yes/no/skip and numbered-choice questions. Input and output streams are
// injected so a test harness can drive every prompt without a console.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dpriskorn/LexUse/pkg/lexuse/internalerr"
)

// Decision is the tri-state outcome of a candidate prompt.
type Decision int

const (
	Reject Decision = iota
	Accept
	SkipForm
)

// String returns a stable label, also used by the decision-history store.
func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case SkipForm:
		return "skip-form"
	default:
		return "reject"
	}
}

// Prompter asks the operator questions over line-based streams. The zero
// MaxAttempts retries invalid input until the stream ends; a positive value
// bounds the retries, after which the prompt counts as canceled. End of
// input always surfaces as internalerr.ErrCanceled.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	MaxAttempts int

	scanner *bufio.Scanner
}

// New creates a Prompter over the given streams.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{In: in, Out: out}
}

func (p *Prompter) readLine() (string, error) {
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(p.In)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", internalerr.ErrCanceled
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *Prompter) attempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return int(^uint(0) >> 1)
}

// YesNo asks a yes/no question. An empty answer counts as yes.
func (p *Prompter) YesNo(message string) (bool, error) {
	for i := 0; i < p.attempts(); i++ {
		fmt.Fprintf(p.Out, "%s [Y/n]: ", message)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		if answer == "" {
			return true, nil
		}
		switch strings.ToLower(answer[:1]) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
	}
	return false, internalerr.ErrCanceled
}

// YesNoSkip asks whether a candidate is acceptable, with a third answer that
// skips the whole form. An empty answer counts as yes.
func (p *Prompter) YesNoSkip(message string) (Decision, error) {
	for i := 0; i < p.attempts(); i++ {
		fmt.Fprintf(p.Out, "%s [(Y)es/(n)o/(s)kip this form]: ", message)
		answer, err := p.readLine()
		if err != nil {
			return Reject, err
		}
		if answer == "" {
			return Accept, nil
		}
		switch strings.ToLower(answer[:1]) {
		case "y":
			return Accept, nil
		case "n":
			return Reject, nil
		case "s":
			return SkipForm, nil
		}
	}
	return Reject, internalerr.ErrCanceled
}

// Choose presents a numbered menu and returns the 1-based index of the
// chosen option. Zero or an out-of-range number cancels; non-numeric input
// retries.
func (p *Prompter) Choose(header string, options []string) (int, error) {
	for i := 0; i < p.attempts(); i++ {
		fmt.Fprintln(p.Out, header)
		for n, option := range options {
			fmt.Fprintf(p.Out, "%d) %s\n", n+1, option)
		}
		fmt.Fprint(p.Out, "Please input a number or 0 to cancel: ")

		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		choice, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Fprintln(p.Out, "Sorry, I didn't understand that.")
			continue
		}
		if choice < 1 || choice > len(options) {
			return 0, internalerr.ErrCanceled
		}
		return choice, nil
	}
	return 0, internalerr.ErrCanceled
}
