package listings

import (
	"strings"

	"github.com/flarebyte/bookreplay/internal/listing"
)

type row struct {
	Position      int    `json:"position"`
	Kind          string `json:"kind"`
	Ref           string `json:"ref,omitempty"`
	Filename      string `json:"filename,omitempty"`
	Command       string `json:"command,omitempty"`
	HasDiff       bool   `json:"hasDiff,omitempty"`
	HasExpected   bool   `json:"hasExpected,omitempty"`
	ExpectFailure bool   `json:"expectFailure,omitempty"`
	Lines         int    `json:"lines,omitempty"`
}

// describer flattens a listing into a row.
type describer struct {
	row row
}

var _ listing.Visitor = (*describer)(nil)

func (d *describer) VisitCode(l listing.CodeListing) error {
	d.row = row{Position: l.Pos, Kind: l.Kind().String(), Ref: l.Ref, Filename: l.Filename, HasDiff: l.Diff != "", Lines: countLines(l.Text)}
	return nil
}

func (d *describer) VisitCommand(l listing.Command) error {
	d.row = row{Position: l.Pos, Kind: l.Kind().String(), Command: l.Command, ExpectFailure: l.ExpectFailure}
	return nil
}

func (d *describer) VisitCommandWithOutput(l listing.CommandWithOutput) error {
	d.row = row{Position: l.Pos, Kind: l.Kind().String(), Command: l.Command, HasExpected: true, ExpectFailure: l.ExpectFailure}
	return nil
}

func (d *describer) VisitTest(l listing.TestRun) error {
	d.row = row{Position: l.Pos, Kind: l.Kind().String(), Command: l.Command, HasExpected: strings.TrimSpace(l.Expected) != "", ExpectFailure: l.ExpectFailure}
	return nil
}

func (d *describer) VisitNarrative(l listing.Narrative) error {
	d.row = row{Position: l.Pos, Kind: l.Kind().String(), Lines: countLines(l.Text)}
	return nil
}

func countLines(s string) int {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
