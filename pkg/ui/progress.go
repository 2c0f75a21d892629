package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"igunfollow/pkg/graph"
	"igunfollow/pkg/unfollow"
)

var _ unfollow.Observer = (*Progress)(nil)

// Progress prints run events as they happen. It implements unfollow.Observer.
type Progress struct {
	mu      sync.Mutex
	w       io.Writer
	quiet   bool
	verbose bool
	loaded  map[graph.Relation]int
}

// NewProgress creates a progress printer writing to w, or stdout when w is
// nil. In quiet mode only failures are printed. Verbose mode also lists the
// full name next to each handle.
func NewProgress(w io.Writer, quiet, verbose bool) *Progress {
	if w == nil {
		w = os.Stdout
	}
	return &Progress{w: w, quiet: quiet, verbose: verbose, loaded: map[graph.Relation]int{}}
}

func (p *Progress) ListProgress(relation graph.Relation, loaded int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded[relation] = loaded
	if p.quiet {
		return
	}
	fmt.Fprintf(p.w, "%s Loaded %d users...\n", labelStyle.Render(string(relation)+":"), loaded)
}

func (p *Progress) NonReciprocal(accounts []graph.Account) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet || len(accounts) == 0 {
		return
	}

	fmt.Fprintln(p.w, highlightStyle.Render(fmt.Sprintf("%d accounts don't follow you back:", len(accounts))))
	for _, a := range accounts {
		line := "  @" + a.Handle
		if p.verbose && a.FullName != "" {
			line += " " + dimStyle.Render("("+a.FullName+")")
		}
		fmt.Fprintln(p.w, line)
	}
}

func (p *Progress) Outcome(index, total int, o unfollow.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch o.Status {
	case unfollow.StatusSucceeded:
		if !p.quiet {
			fmt.Fprintln(p.w, successStyle.Render(fmt.Sprintf("✓ Unfollowed %s (%d/%d)", o.Account.Handle, index, total)))
		}
	case unfollow.StatusFailedResponse:
		fmt.Fprintln(p.w, errorStyle.Render(fmt.Sprintf("✗ Failed to unfollow %s (%d/%d): HTTP %d", o.Account.Handle, index, total, o.StatusCode)))
	default:
		msg := fmt.Sprintf("✗ Failed to unfollow %s (%d/%d)", o.Account.Handle, index, total)
		if o.Err != nil {
			msg += ": " + o.Err.Error()
		}
		fmt.Fprintln(p.w, errorStyle.Render(msg))
	}
}

func (p *Progress) Done(result *unfollow.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}

	switch {
	case result.NothingToDo:
		fmt.Fprintln(p.w, successStyle.Render(unfollow.NothingToDo))
	case result.DryRun:
		fmt.Fprintln(p.w, warningStyle.Render(fmt.Sprintf("Dry run: would unfollow %d accounts", len(result.Planned))))
	case result.Aborted:
		fmt.Fprintln(p.w, warningStyle.Render("Cancelled, nobody was unfollowed"))
	}
}

// Loaded returns the last reported size of each list
func (p *Progress) Loaded(relation graph.Relation) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded[relation]
}

// ConfirmPrompt returns a confirmation callback that reads a y/N answer
// from in. Anything other than y or yes declines.
func ConfirmPrompt(in io.Reader, w io.Writer) func([]graph.Account) bool {
	if w == nil {
		w = os.Stdout
	}
	return func(accounts []graph.Account) bool {
		fmt.Fprintf(w, "%s ", warningStyle.Render(fmt.Sprintf("Unfollow %d accounts? [y/N]", len(accounts))))
		var answer string
		if _, err := fmt.Fscanln(in, &answer); err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
