package run

import (
	"errors"

	"github.com/flarebyte/bookreplay/internal/replay"
	"github.com/flarebyte/bookreplay/internal/report"
)

const (
	exitCodeSuccess    = 0
	exitCodeExecErr    = 1
	exitCodeDivergence = 2
)

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }

// summary is the single stdout line of `bookreplay run`.
type summary struct {
	OK            bool   `json:"ok"`
	RunID         string `json:"runId"`
	Chapter       int    `json:"chapter"`
	Listings      int    `json:"listings"`
	Passed        int    `json:"passed"`
	Failed        int    `json:"failed"`
	Skipped       int    `json:"skipped"`
	FastForwarded bool   `json:"fastForwarded,omitempty"`
	Divergent     int    `json:"divergentFiles,omitempty"`
}

func newSummary(r report.Report) summary {
	c := r.Counts()
	return summary{
		OK:            r.Passed,
		RunID:         r.RunID,
		Chapter:       r.Chapter,
		Listings:      len(r.Listings),
		Passed:        c[report.StatusPassed],
		Failed:        c[report.StatusFailed],
		Skipped:       c[report.StatusSkipped],
		FastForwarded: r.FastForwarded,
		Divergent:     len(r.Deltas),
	}
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitCodeSuccess
	case errors.Is(err, replay.ErrChapterDivergence):
		return exitCodeDivergence
	default:
		return exitCodeExecErr
	}
}

func evaluateRunExit(err error) error {
	code := exitCodeFor(err)
	if code == exitCodeSuccess {
		return nil
	}
	return runExitError{code: code, msg: err.Error()}
}
