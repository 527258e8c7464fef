package replay

import (
	"fmt"

	"github.com/flarebyte/bookreplay/internal/sandbox"
)

// Differ compares the working tree against a reference.
type Differ interface {
	DiffAgainst(ref string) (sandbox.DiffReport, error)
}

// AssertAllListingsChecked fails unless every position of a finished cursor
// was visited by the dispatcher.
func AssertAllListingsChecked(c *Cursor) error {
	if !c.Done() {
		return fmt.Errorf("%w: state %s at position %d", ErrCursorNotDone, c.State(), c.Position())
	}
	if u := c.Unvisited(); len(u) > 0 {
		return &IncompleteReplayError{Unvisited: u}
	}
	return nil
}

// CheckFinalDiff fails unless the tree matches the chapter's end-state ref.
func CheckFinalDiff(c *Cursor, d Differ, chapter int, endRef string) (sandbox.DiffReport, error) {
	if !c.Done() {
		return sandbox.DiffReport{}, fmt.Errorf("%w: state %s at position %d", ErrCursorNotDone, c.State(), c.Position())
	}
	rep, err := d.DiffAgainst(endRef)
	if err != nil {
		return rep, err
	}
	if !rep.Empty() {
		return rep, &ChapterDivergenceError{Chapter: chapter, Ref: endRef, Deltas: rep.Deltas}
	}
	return rep, nil
}
