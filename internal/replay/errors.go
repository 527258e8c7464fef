package replay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flarebyte/bookreplay/internal/listing"
	"github.com/flarebyte/bookreplay/internal/sandbox"
)

var (
	// ErrListing matches every handler failure.
	ErrListing = errors.New("listing failed")
	// ErrCommandFailed matches an unexpected command exit status.
	ErrCommandFailed = errors.New("command failed")
	// ErrOutputMismatch matches output that differs from the book.
	ErrOutputMismatch = errors.New("output mismatch")
	// ErrListingMismatch matches a code listing that disagrees with its commit.
	ErrListingMismatch = errors.New("listing mismatch")
	// ErrIncompleteReplay matches a replay that left positions unvisited.
	ErrIncompleteReplay = errors.New("incomplete replay")
	// ErrChapterDivergence matches a final tree that differs from the end state.
	ErrChapterDivergence = errors.New("chapter divergence")

	ErrCursorDone          = errors.New("cursor already done")
	ErrCursorHalted        = errors.New("cursor halted")
	ErrCursorNotDone       = errors.New("cursor not done")
	ErrFastForwardDisabled = errors.New("fast-forward requires debug mode")
)

// ListingError reports the failing listing; the cursor halts on it.
type ListingError struct {
	Position int
	Kind     listing.Kind
	Err      error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing %d (%s): %v", e.Position, e.Kind, e.Err)
}

func (e *ListingError) Unwrap() error        { return e.Err }
func (e *ListingError) Is(target error) bool { return target == ErrListing }

// CommandFailedError is an exit status the listing did not announce.
type CommandFailedError struct {
	Command       string
	ExitCode      int
	ExpectFailure bool
	TimedOut      bool
	Output        string
}

func (e *CommandFailedError) Error() string {
	switch {
	case e.TimedOut:
		return fmt.Sprintf("command %q timed out", e.Command)
	case e.ExpectFailure:
		return fmt.Sprintf("command %q succeeded but the listing expects a failure", e.Command)
	default:
		return fmt.Sprintf("command %q exited with status %d: %s", e.Command, e.ExitCode, lastLines(e.Output, 5))
	}
}

func (e *CommandFailedError) Is(target error) bool { return target == ErrCommandFailed }

// OutputMismatchError carries a line diff between expected and actual output.
type OutputMismatchError struct {
	Command  string
	Expected string
	Actual   string
	Diff     string
}

func (e *OutputMismatchError) Error() string {
	return fmt.Sprintf("output of %q does not match the listing:\n%s", e.Command, e.Diff)
}

func (e *OutputMismatchError) Is(target error) bool { return target == ErrOutputMismatch }

// ListingMismatchError reports a code listing whose text, file or diff does
// not agree with the labelled commit.
type ListingMismatchError struct {
	Ref    string
	File   string
	Reason string
	Diff   string
}

func (e *ListingMismatchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Ref, e.Reason)
	if e.File != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Ref, e.File, e.Reason)
	}
	if e.Diff != "" {
		msg += "\n" + e.Diff
	}
	return msg
}

func (e *ListingMismatchError) Is(target error) bool { return target == ErrListingMismatch }

// IncompleteReplayError lists the positions the dispatcher never visited.
type IncompleteReplayError struct {
	Unvisited []int
}

func (e *IncompleteReplayError) Error() string {
	parts := make([]string, 0, len(e.Unvisited))
	for _, p := range e.Unvisited {
		parts = append(parts, fmt.Sprint(p))
	}
	return fmt.Sprintf("incomplete replay: %d listing(s) never visited: %s", len(e.Unvisited), strings.Join(parts, ","))
}

func (e *IncompleteReplayError) Is(target error) bool { return target == ErrIncompleteReplay }

// ChapterDivergenceError reports a final tree that differs from the chapter's
// end-state commit.
type ChapterDivergenceError struct {
	Chapter int
	Ref     string
	Deltas  []sandbox.FileDelta
}

func (e *ChapterDivergenceError) Error() string {
	paths := make([]string, 0, len(e.Deltas))
	for _, d := range e.Deltas {
		paths = append(paths, fmt.Sprintf("%s (%s)", d.Path, d.Status))
	}
	return fmt.Sprintf("chapter %d diverges from %s: %s", e.Chapter, e.Ref, strings.Join(paths, ", "))
}

func (e *ChapterDivergenceError) Is(target error) bool { return target == ErrChapterDivergence }

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
