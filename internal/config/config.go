// Package config loads the CUE file describing how one chapter is replayed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
)

// Chapter is the decoded chapter config. Relative paths are resolved
// against Dir, the directory holding the config file; Fixture.Database is
// left relative because it lives inside the sandbox.
type Chapter struct {
	ConfigVersion string
	Chapter       int
	Listings      string
	Dir           string
	Repo          Repo
	Shell         Shell
	Tests         Tests
	Fixture       Fixture
	Output        Output
	Sanity        Sanity
	Debug         Debug
}

// Repo locates the book's example repository and its chapter references.
type Repo struct {
	Source            string
	BranchTemplate    string
	StartRef          string
	EndRef            string
	Ignore            []string
	Keep              bool
	HasBranchTemplate bool
	HasStartRef       bool
	HasEndRef         bool
	HasKeep           bool
}

// Shell holds optional shell execution configuration.
type Shell struct {
	Program          string
	Env              map[string]string
	TimeoutMs        int
	TermGraceMs      int
	CaptureMaxBytes  int
	KillProcessGroup bool
	HasSection       bool
	HasProgram       bool
	HasEnv           bool
	HasTimeout       bool
	HasTermGrace     bool
	HasCaptureMax    bool
	HasKillPG        bool
}

// Tests names the chapter's test runner command.
type Tests struct {
	Command    string
	HasCommand bool
}

// Fixture configures the SQLite baseline reset before replay.
type Fixture struct {
	Enabled         bool
	Database        string
	Baseline        string
	BaselineFile    string
	ResetCommand    string
	HasEnabled      bool
	HasDatabase     bool
	HasBaseline     bool
	HasResetCommand bool
}

// Output holds the optional Lua normaliser and report destination.
type Output struct {
	Normalize    string
	Report       string
	HasNormalize bool
	HasReport    bool
}

// Sanity lists the kinds the leading listings must have.
type Sanity struct {
	Kinds    []string
	HasKinds bool
}

// Debug holds the opt-in fast-forward settings.
type Debug struct {
	FastForward FastForward
}

// FastForward jumps the replay to Position with the tree at Label.
type FastForward struct {
	Enabled     bool
	Position    int
	Label       string
	HasPosition bool
	HasLabel    bool
}

// Load compiles, validates and decodes a chapter config.
// Required fields:
//   - configVersion: string
//   - chapter: int > 0
//   - listings: string
//   - repo.source: string
func Load(path string) (Chapter, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Chapter{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Chapter{}, err
	}
	var c Chapter
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&c.ConfigVersion); err != nil {
		return Chapter{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if err := checkConfigVersion(c.ConfigVersion); err != nil {
		return Chapter{}, err
	}
	if err := requireIntField(v, "chapter"); err != nil {
		return Chapter{}, err
	}
	if err := v.LookupPath(cue.ParsePath("chapter")).Decode(&c.Chapter); err != nil {
		return Chapter{}, fmt.Errorf("invalid value for chapter: %v", err)
	}
	if c.Chapter <= 0 {
		return Chapter{}, fmt.Errorf("invalid value for chapter: %d (expected > 0)", c.Chapter)
	}
	if err := requireStringField(v, "listings"); err != nil {
		return Chapter{}, err
	}
	if err := v.LookupPath(cue.ParsePath("listings")).Decode(&c.Listings); err != nil {
		return Chapter{}, fmt.Errorf("invalid value for listings: %v", err)
	}

	c.Repo, err = parseRepoSection(v)
	if err != nil {
		return Chapter{}, err
	}
	c.Shell = parseShellSection(v)
	c.Tests = parseTestsSection(v)
	c.Fixture = parseFixtureSection(v)
	c.Output = parseOutputSection(v)
	c.Sanity = parseSanitySection(v)
	c.Debug = parseDebugSection(v)

	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		c.Dir = abs
	} else {
		c.Dir = filepath.Dir(path)
	}
	if err := c.resolvePaths(); err != nil {
		return Chapter{}, err
	}
	return c, nil
}

// resolvePaths anchors file references at the config directory and inlines
// fixture.baselineFile.
func (c *Chapter) resolvePaths() error {
	c.Listings = c.relative(c.Listings)
	if isLocalSource(c.Repo.Source) {
		c.Repo.Source = c.relative(c.Repo.Source)
	}
	if c.Output.HasReport {
		c.Output.Report = c.relative(c.Output.Report)
	}
	if c.Fixture.BaselineFile != "" {
		if c.Fixture.HasBaseline {
			return fmt.Errorf("invalid config: fixture.baseline and fixture.baselineFile are exclusive")
		}
		p := c.relative(c.Fixture.BaselineFile)
		b, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read fixture baseline: %w", err)
		}
		c.Fixture.BaselineFile = p
		c.Fixture.Baseline = string(b)
		c.Fixture.HasBaseline = true
	}
	return nil
}

func (c *Chapter) relative(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

func isLocalSource(src string) bool {
	if strings.Contains(src, "://") {
		return false
	}
	// scp-like git@host:path
	if i := strings.Index(src, ":"); i > 0 && !strings.ContainsAny(src[:i], `/\`) && strings.Contains(src[:i], "@") {
		return false
	}
	return true
}
