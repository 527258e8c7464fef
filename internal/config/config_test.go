package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	return p
}

const fullConfig = `configVersion: "1"
chapter: 10
listings: "manifests/chapter_10.yaml"
repo: {
	source: "../book-example"
	branchTemplate: "ch%d"
	endRef: "v10"
	ignore: ["*.pyc", "db.sqlite3"]
	keep: true
}
shell: {
	program: "bash"
	timeoutMs: 30000
	termGraceMs: 100
	captureMaxBytes: 4096
	killProcessGroup: true
	env: {DJANGO_SETTINGS_MODULE: "superlists.settings"}
}
tests: command: "python manage.py test"
fixture: {
	enabled: true
	database: "db.sqlite3"
	baselineFile: "baseline.sql"
	resetCommand: "python manage.py migrate --noinput"
}
output: {
	normalize: "return function(text) return text end"
	report: "out/ch10.json"
}
sanity: kinds: ["code listing with git ref", "test"]
debug: fastForward: {
	enabled: true
	position: 31
	label: "ch10l008-1"
}
`

func TestLoad_Full(t *testing.T) {
	d := t.TempDir()
	if err := os.WriteFile(filepath.Join(d, "baseline.sql"), []byte("CREATE TABLE t (id INTEGER);\n"), 0o644); err != nil {
		t.Fatalf("write baseline: %v", err)
	}
	p := writeConfig(t, d, "chapter.cue", fullConfig)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Chapter != 10 || c.ConfigVersion != "1" {
		t.Fatalf("unexpected header: %+v", c)
	}
	if c.Listings != filepath.Join(d, "manifests/chapter_10.yaml") {
		t.Fatalf("listings not resolved: %s", c.Listings)
	}
	if c.Repo.Source != filepath.Join(filepath.Dir(d), "book-example") {
		t.Fatalf("source not resolved: %s", c.Repo.Source)
	}
	if !c.Repo.HasBranchTemplate || c.Repo.BranchTemplate != "ch%d" || c.Repo.HasStartRef || c.Repo.EndRef != "v10" || !c.Repo.Keep {
		t.Fatalf("unexpected repo: %+v", c.Repo)
	}
	if !reflect.DeepEqual(c.Repo.Ignore, []string{"*.pyc", "db.sqlite3"}) {
		t.Fatalf("unexpected ignore: %v", c.Repo.Ignore)
	}
	if c.Shell.Program != "bash" || c.Shell.TimeoutMs != 30000 || c.Shell.TermGraceMs != 100 || c.Shell.CaptureMaxBytes != 4096 || !c.Shell.KillProcessGroup {
		t.Fatalf("unexpected shell: %+v", c.Shell)
	}
	if c.Shell.Env["DJANGO_SETTINGS_MODULE"] != "superlists.settings" {
		t.Fatalf("unexpected env: %v", c.Shell.Env)
	}
	if c.Tests.Command != "python manage.py test" {
		t.Fatalf("unexpected tests: %+v", c.Tests)
	}
	if !c.Fixture.Enabled || c.Fixture.Database != "db.sqlite3" || !strings.HasPrefix(c.Fixture.Baseline, "CREATE TABLE t") {
		t.Fatalf("unexpected fixture: %+v", c.Fixture)
	}
	if c.Output.Report != filepath.Join(d, "out/ch10.json") || !c.Output.HasNormalize {
		t.Fatalf("unexpected output: %+v", c.Output)
	}
	if len(c.Sanity.Kinds) != 2 {
		t.Fatalf("unexpected sanity: %+v", c.Sanity)
	}
	ff := c.Debug.FastForward
	if !ff.Enabled || ff.Position != 31 || ff.Label != "ch10l008-1" {
		t.Fatalf("unexpected fast-forward: %+v", ff)
	}
}

func TestLoad_Minimal(t *testing.T) {
	d := t.TempDir()
	p := writeConfig(t, d, "min.cue", "configVersion: \"1\"\nchapter: 3\nlistings: \"ch3.yaml\"\nrepo: source: \"https://example.com/book.git\"\n")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Repo.Source != "https://example.com/book.git" {
		t.Fatalf("remote source must stay untouched: %s", c.Repo.Source)
	}
	if c.Shell.HasSection || c.Fixture.Enabled || c.Debug.FastForward.Enabled || c.Output.HasReport {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"format", "c.json", "{}", "unsupported config format: expected .cue"},
		{"syntax", "c.cue", "configVersion: ", "invalid config:"},
		{"missing version", "c.cue", "chapter: 1\n", "missing required field: configVersion"},
		{"chapter type", "c.cue", "configVersion: \"1\"\nchapter: \"10\"\n", "invalid type for field: chapter (expected int)"},
		{"chapter zero", "c.cue", "configVersion: \"1\"\nchapter: 0\nlistings: \"x\"\n", "invalid value for chapter: 0"},
		{"missing listings", "c.cue", "configVersion: \"1\"\nchapter: 1\n", "missing required field: listings"},
		{"missing repo", "c.cue", "configVersion: \"1\"\nchapter: 1\nlistings: \"x\"\n", "missing required field: repo"},
		{"missing source", "c.cue", "configVersion: \"1\"\nchapter: 1\nlistings: \"x\"\nrepo: keep: true\n", "missing required field: source (in repo)"},
		{"baseline exclusive", "c.cue", "configVersion: \"1\"\nchapter: 1\nlistings: \"x\"\nrepo: source: \"r\"\nfixture: {baseline: \"a\", baselineFile: \"b.sql\"}\n", "exclusive"},
		{"baseline missing", "c.cue", "configVersion: \"1\"\nchapter: 1\nlistings: \"x\"\nrepo: source: \"r\"\nfixture: baselineFile: \"nope.sql\"\n", "failed to read fixture baseline"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, t.TempDir(), tc.file, tc.content)
			_, err := Load(p)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error\nwant substring: %s\n got: %s", tc.want, err.Error())
			}
		})
	}
}

func TestIsLocalSource(t *testing.T) {
	cases := map[string]bool{
		"../book-example":               true,
		"/srv/book":                     true,
		"https://github.com/x/book.git": false,
		"git@github.com:x/book.git":     false,
		"file:///srv/book":              false,
	}
	for src, want := range cases {
		if got := isLocalSource(src); got != want {
			t.Fatalf("isLocalSource(%q)=%v want %v", src, got, want)
		}
	}
}
