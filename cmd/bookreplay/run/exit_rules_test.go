package run

import (
	"errors"
	"fmt"
	"testing"

	"github.com/flarebyte/bookreplay/internal/fixture"
	"github.com/flarebyte/bookreplay/internal/listing"
	"github.com/flarebyte/bookreplay/internal/replay"
	"github.com/flarebyte/bookreplay/internal/report"
	"github.com/flarebyte/bookreplay/internal/sandbox"
)

func assertExitError(t *testing.T, err error, wantMsg string, wantCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != wantMsg {
		t.Fatalf("unexpected error: %v", err)
	}
	ec, ok := err.(interface{ ExitCode() int })
	if !ok || ec.ExitCode() != wantCode {
		t.Fatalf("unexpected exit code")
	}
}

func TestEvaluateRunExit_Success(t *testing.T) {
	if err := evaluateRunExit(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvaluateRunExit_Divergence(t *testing.T) {
	err := &replay.ChapterDivergenceError{
		Chapter: 10,
		Ref:     "chapter_10",
		Deltas:  []sandbox.FileDelta{{Path: "lists/views.py", Status: sandbox.DeltaModified}},
	}
	assertExitError(t, evaluateRunExit(err), "chapter 10 diverges from chapter_10: lists/views.py (modified)", exitCodeDivergence)
}

func TestEvaluateRunExit_ExecutionErrors(t *testing.T) {
	cases := []error{
		&listing.UnrecognizedKindError{Position: 4, Reason: "no rule matches"},
		&sandbox.CheckoutError{Ref: "chapter_09", Err: errors.New("reference not found")},
		&fixture.FixtureResetError{Step: "baseline", Err: errors.New("syntax error")},
		&replay.ListingError{Position: 2, Kind: listing.KindTest, Err: &replay.CommandFailedError{Command: "python manage.py test", ExitCode: 1}},
		&replay.IncompleteReplayError{Unvisited: []int{0, 1}},
		fmt.Errorf("wrapped: %w", errors.New("boom")),
	}
	for _, err := range cases {
		assertExitError(t, evaluateRunExit(err), err.Error(), exitCodeExecErr)
	}
}

func TestNewSummary(t *testing.T) {
	s := newSummary(report.Report{
		RunID:   "01HQ",
		Chapter: 10,
		Listings: []report.ListingOutcome{
			{Status: report.StatusSkipped},
			{Status: report.StatusPassed},
			{Status: report.StatusFailed},
			{Status: report.StatusPending},
		},
		FastForwarded: true,
	})
	if s.OK || s.Listings != 4 || s.Passed != 1 || s.Failed != 1 || s.Skipped != 1 || !s.FastForwarded {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
