package replay

import (
	"context"
	"slices"
	"strings"

	"github.com/flarebyte/bookreplay/internal/listing"
	"github.com/flarebyte/bookreplay/internal/sandbox"
	"github.com/flarebyte/bookreplay/internal/textdiff"
	"go.uber.org/zap"
)

// dispatcher executes one listing against the cursor's sandbox.
type dispatcher struct {
	ctx context.Context
	c   *Cursor
}

var _ listing.Visitor = (*dispatcher)(nil)

// VisitCode brings the files touched by the labelled commit into the tree,
// through the listing's diff when it has one, and checks the result.
func (d *dispatcher) VisitCode(l listing.CodeListing) error {
	sb := d.c.sb
	h, err := sb.CommitSpec(l.Ref)
	if err != nil {
		return err
	}
	files, err := sb.CommitFiles(h)
	if err != nil {
		return err
	}
	if l.Filename != "" && !slices.Contains(files, l.Filename) {
		return &ListingMismatchError{Ref: l.Ref, File: l.Filename, Reason: "file not touched by the commit"}
	}
	if strings.TrimSpace(l.Diff) != "" {
		if err := sb.ApplyPatch(d.ctx, l.Diff); err != nil {
			return err
		}
	} else if err := sb.RestoreFiles(h, files); err != nil {
		return err
	}
	for _, f := range files {
		want, wantOK, err := sb.FileAt(h, f)
		if err != nil {
			return err
		}
		got, gotOK, err := sb.ReadFile(f)
		if err != nil {
			return err
		}
		switch {
		case wantOK && !gotOK:
			return &ListingMismatchError{Ref: l.Ref, File: f, Reason: "file missing after listing"}
		case !wantOK && gotOK:
			return &ListingMismatchError{Ref: l.Ref, File: f, Reason: "file should have been deleted"}
		case want != got:
			return &ListingMismatchError{Ref: l.Ref, File: f, Reason: "content differs from the commit", Diff: textdiff.Lines(want, got)}
		}
	}
	if l.Filename != "" && strings.TrimSpace(l.Text) != "" {
		content, _, err := sb.FileAt(h, l.Filename)
		if err != nil {
			return err
		}
		if line, ok := listingInFile(l.Text, content); !ok {
			return &ListingMismatchError{Ref: l.Ref, File: l.Filename, Reason: "listing line not found in order: " + strings.TrimSpace(line)}
		}
	}
	return nil
}

func (d *dispatcher) VisitCommand(l listing.Command) error {
	_, err := d.run(l.Command, l.ExpectFailure)
	return err
}

func (d *dispatcher) VisitCommandWithOutput(l listing.CommandWithOutput) error {
	res, err := d.run(l.Command, l.ExpectFailure)
	if err != nil {
		return err
	}
	return d.c.opts.Comparer.Compare(d.ctx, l.Command, l.Expected, res.Output)
}

func (d *dispatcher) VisitTest(l listing.TestRun) error {
	cmd := l.Command
	if cmd == "" {
		cmd = d.c.opts.TestCommand
	}
	if strings.TrimSpace(cmd) == "" {
		return &CommandFailedError{Command: cmd, ExitCode: -1, Output: "no test command configured"}
	}
	res, err := d.run(cmd, l.ExpectFailure)
	if err != nil {
		return err
	}
	if strings.TrimSpace(l.Expected) == "" {
		return nil
	}
	return d.c.opts.Comparer.Compare(d.ctx, cmd, l.Expected, res.Output)
}

func (d *dispatcher) VisitNarrative(l listing.Narrative) error {
	d.c.log.Debug("narrative", zap.Int("position", l.Pos))
	return nil
}

// run executes command and checks its exit status against expectFailure.
func (d *dispatcher) run(command string, expectFailure bool) (sandbox.Result, error) {
	res, err := d.c.sb.RunCommand(d.ctx, command)
	if err != nil {
		return res, err
	}
	d.c.log.Debug("command finished",
		zap.String("command", command),
		zap.Int("exit_code", res.ExitCode),
		zap.Bool("truncated", res.Truncated),
	)
	if res.TimedOut {
		return res, &CommandFailedError{Command: command, ExitCode: res.ExitCode, TimedOut: true, Output: res.Output}
	}
	if res.Success() == expectFailure {
		return res, &CommandFailedError{Command: command, ExitCode: res.ExitCode, ExpectFailure: expectFailure, Output: res.Output}
	}
	return res, nil
}

// listingInFile reports whether the non-blank, non-elided lines of text occur
// in content in order. On failure it returns the first line not found.
func listingInFile(text, content string) (string, bool) {
	fileLines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	at := 0
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimRight(raw, " \t")
		if strings.TrimSpace(line) == "" || strings.TrimSpace(line) == elision {
			continue
		}
		found := false
		for at < len(fileLines) {
			cand := strings.TrimRight(fileLines[at], " \t")
			at++
			if lineMatches(line, cand) {
				found = true
				break
			}
		}
		if !found {
			return raw, false
		}
	}
	return "", true
}
