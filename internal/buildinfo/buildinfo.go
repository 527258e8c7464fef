// Package buildinfo exposes version metadata for the CLI. Values can be
// overridden at build time via -ldflags; the cli package values are honored
// as a fallback for release scripts that only stamp cli.Version and cli.Date.
package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/flarebyte/bookreplay/cli"
)

var (
	// Version is the semantic version or custom string. Defaults to cli.Version or "dev".
	Version = "dev"
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time in RFC3339 or similar (optional). Falls back to cli.Date.
	Date = ""
)

// Info is the JSON shape of `bookreplay version --json`.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
	Go      string `json:"go"`
	OS      string `json:"goOs"`
	Arch    string `json:"goArch"`
}

// Current resolves the effective metadata, reading the VCS revision from the
// embedded build info when Commit was not stamped.
func Current() Info {
	info := Info{
		Version: effectiveVersion(),
		Commit:  Commit,
		Date:    Date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	if info.Date == "" {
		info.Date = cli.Date
	}
	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}

// Summary returns a concise single-line version string.
func Summary() string {
	v := effectiveVersion()
	d := Date
	if d == "" {
		d = cli.Date
	}
	parts := make([]string, 0, 2)
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if d != "" {
		parts = append(parts, "date="+d)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}

func effectiveVersion() string {
	v := Version
	if v == "" {
		v = cli.Version
	}
	if v == "" {
		v = "dev"
	}
	return v
}
