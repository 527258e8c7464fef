package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

func sampleReport() Report {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return Report{
		RunID:      "01HQ0000000000000000000000",
		Chapter:    10,
		StartedAt:  at,
		FinishedAt: at.Add(2 * time.Second),
		Listings: []ListingOutcome{
			{Position: 0, Kind: "code listing with git ref", Status: StatusPassed, DurationMs: 12},
			{Position: 1, Kind: "test", Status: StatusFailed, DurationMs: 80, Error: "exit status 1 <expected 0>"},
		},
		Error: "listing 1 (test): command failed",
	}
}

func TestWrite_JSONAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "out/ch10.json", []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Write(fs, "out/ch10.json", sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := afero.ReadFile(fs, "out/ch10.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(b, []byte("<expected 0>")) {
		t.Fatalf("html escaping must be off: %s", b)
	}
	var got Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Chapter != 10 || len(got.Listings) != 2 || got.Listings[1].Status != StatusFailed {
		t.Fatalf("unexpected report: %+v", got)
	}
	entries, err := afero.ReadDir(fs, "out")
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}

func TestWrite_YAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := Write(fs, "ch10.yaml", sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := afero.ReadFile(fs, "ch10.yaml")
	if !strings.HasPrefix(string(b), "runId: 01HQ0000000000000000000000\n") || strings.HasSuffix(string(b), "\n\n") {
		t.Fatalf("unexpected yaml:\n%s", b)
	}
	var got Report
	if err := yaml.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Listings[0].Kind != "code listing with git ref" {
		t.Fatalf("unexpected listings: %+v", got.Listings)
	}
}

func TestWrite_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if err := Write(fs, "out/ch10.json", sampleReport()); err == nil {
		t.Fatalf("expected error on read-only fs")
	}
}

func TestNewRunID_Sortable(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewRunID(t0)
	b := NewRunID(t0.Add(time.Millisecond))
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("unexpected ulid length: %q %q", a, b)
	}
	if !(a < b) {
		t.Fatalf("run ids not time ordered: %s >= %s", a, b)
	}
}

func TestCounts(t *testing.T) {
	c := sampleReport().Counts()
	if c[StatusPassed] != 1 || c[StatusFailed] != 1 || c[StatusSkipped] != 0 {
		t.Fatalf("unexpected counts: %v", c)
	}
}
