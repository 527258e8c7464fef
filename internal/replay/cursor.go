// Package replay walks a chapter's listings against a sandbox, in order, and
// checks the result against the chapter's end state.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/flarebyte/bookreplay/internal/listing"
	"github.com/flarebyte/bookreplay/internal/report"
	"github.com/flarebyte/bookreplay/internal/sandbox"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// Sandbox is the part of *sandbox.Tree the handlers drive.
type Sandbox interface {
	RunCommand(ctx context.Context, command string) (sandbox.Result, error)
	CommitSpec(label string) (plumbing.Hash, error)
	CommitFiles(h plumbing.Hash) ([]string, error)
	FileAt(h plumbing.Hash, path string) (string, bool, error)
	ReadFile(path string) (string, bool, error)
	RestoreFiles(h plumbing.Hash, paths []string) error
	ApplyPatch(ctx context.Context, diff string) error
	Checkout(ctx context.Context, h plumbing.Hash) error
}

// Options configures a Cursor.
type Options struct {
	// TestCommand runs for TestRun listings without their own command.
	TestCommand string
	Comparer    Comparer
	// Debug enables DebugFastForward.
	Debug  bool
	Logger *zap.Logger
}

// Cursor owns the listing sequence of one chapter and the position reached
// in it. Position only moves forward.
type Cursor struct {
	listings []listing.Listing
	sb       Sandbox
	opts     Options
	log      *zap.Logger

	pos           int
	state         State
	visited       []bool
	outcomes      []report.ListingOutcome
	fastForwarded bool
	err           error
}

// New returns a cursor at position 0.
func New(listings []listing.Listing, sb Sandbox, opts Options) *Cursor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cursor{
		listings: listings,
		sb:       sb,
		opts:     opts,
		log:      log,
		visited:  make([]bool, len(listings)),
		outcomes: make([]report.ListingOutcome, len(listings)),
	}
	for i, l := range listings {
		c.outcomes[i] = report.ListingOutcome{Position: i, Kind: l.Kind().String(), Status: report.StatusPending}
	}
	if len(listings) == 0 {
		c.state = Done
	}
	return c
}

func (c *Cursor) Position() int       { return c.pos }
func (c *Cursor) Len() int            { return len(c.listings) }
func (c *Cursor) State() State        { return c.state }
func (c *Cursor) Done() bool          { return c.state == Done }
func (c *Cursor) Err() error          { return c.err }
func (c *Cursor) FastForwarded() bool { return c.fastForwarded }

// Visited reports whether the listing at pos was processed.
func (c *Cursor) Visited(pos int) bool {
	return pos >= 0 && pos < len(c.visited) && c.visited[pos]
}

// Unvisited returns the positions never processed, in order.
func (c *Cursor) Unvisited() []int {
	var out []int
	for i, v := range c.visited {
		if !v {
			out = append(out, i)
		}
	}
	return out
}

// Outcomes returns a copy of the per-listing results so far.
func (c *Cursor) Outcomes() []report.ListingOutcome {
	return append([]report.ListingOutcome(nil), c.outcomes...)
}

// Step processes the listing at the current position and advances by one.
// A handler failure halts the cursor at that position for good.
func (c *Cursor) Step(ctx context.Context) error {
	switch c.state {
	case Done:
		return ErrCursorDone
	case Halted:
		return fmt.Errorf("%w: %v", ErrCursorHalted, c.err)
	}
	l := c.listings[c.pos]
	c.state = Processing
	c.log.Info("listing", zap.Int("position", c.pos), zap.Stringer("kind", l.Kind()))

	start := time.Now()
	err := ctx.Err()
	if err == nil {
		err = l.Accept(&dispatcher{ctx: ctx, c: c})
	}
	out := &c.outcomes[c.pos]
	out.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		out.Status = report.StatusFailed
		out.Error = err.Error()
		c.err = &ListingError{Position: c.pos, Kind: l.Kind(), Err: err}
		c.state = Halted
		c.log.Error("listing failed", zap.Int("position", c.pos), zap.Stringer("kind", l.Kind()), zap.Error(err))
		return c.err
	}
	out.Status = report.StatusPassed
	c.visited[c.pos] = true
	c.state = Advanced
	c.pos++
	c.settle()
	return nil
}

// Run steps until the cursor is done or a listing fails.
func (c *Cursor) Run(ctx context.Context) error {
	for !c.Done() {
		if err := c.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DebugFastForward moves the tree to the commit labelled label and jumps the
// position to pos. Skipped listings stay unvisited, so the replay can no
// longer pass AssertAllListingsChecked. Only available with Options.Debug.
func (c *Cursor) DebugFastForward(ctx context.Context, pos int, label string) error {
	if !c.opts.Debug {
		return ErrFastForwardDisabled
	}
	if c.state == Halted {
		return fmt.Errorf("%w: %v", ErrCursorHalted, c.err)
	}
	if pos < c.pos || pos > len(c.listings) {
		return fmt.Errorf("fast-forward: position %d outside [%d, %d]", pos, c.pos, len(c.listings))
	}
	h, err := c.sb.CommitSpec(label)
	if err != nil {
		return fmt.Errorf("fast-forward: %w", err)
	}
	if err := c.sb.Checkout(ctx, h); err != nil {
		return fmt.Errorf("fast-forward: %w", err)
	}
	c.log.Warn("fast-forward: listings skipped",
		zap.Int("from", c.pos),
		zap.Int("to", pos),
		zap.String("label", label),
		zap.String("commit", h.String()),
	)
	for i := c.pos; i < pos; i++ {
		c.outcomes[i].Status = report.StatusSkipped
	}
	c.fastForwarded = true
	c.pos = pos
	c.settle()
	return nil
}

func (c *Cursor) settle() {
	if c.pos >= len(c.listings) {
		c.state = Done
		return
	}
	c.state = Pending
}
