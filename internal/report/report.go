// Package report describes the outcome of one chapter replay and writes it
// to disk.
package report

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status is the outcome of a single listing.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	// StatusPending marks listings the replay never reached.
	StatusPending Status = "pending"
)

// ListingOutcome records what happened to the listing at Position.
type ListingOutcome struct {
	Position   int    `json:"position" yaml:"position"`
	Kind       string `json:"kind" yaml:"kind"`
	Status     Status `json:"status" yaml:"status"`
	DurationMs int64  `json:"durationMs" yaml:"durationMs"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Delta is one file of the final consistency diff.
type Delta struct {
	Path   string `json:"path" yaml:"path"`
	Status string `json:"status" yaml:"status"`
	Patch  string `json:"patch,omitempty" yaml:"patch,omitempty"`
}

// Report is the replay result of one chapter.
type Report struct {
	RunID         string           `json:"runId" yaml:"runId"`
	Chapter       int              `json:"chapter" yaml:"chapter"`
	StartedAt     time.Time        `json:"startedAt" yaml:"startedAt"`
	FinishedAt    time.Time        `json:"finishedAt" yaml:"finishedAt"`
	Passed        bool             `json:"passed" yaml:"passed"`
	FastForwarded bool             `json:"fastForwarded" yaml:"fastForwarded"`
	Listings      []ListingOutcome `json:"listings" yaml:"listings"`
	Deltas        []Delta          `json:"deltas,omitempty" yaml:"deltas,omitempty"`
	Error         string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewRunID returns a lexically sortable run identifier for t.
func NewRunID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Counts returns how many listings ended in each status.
func (r Report) Counts() map[Status]int {
	out := map[Status]int{}
	for _, l := range r.Listings {
		out[l.Status]++
	}
	return out
}
