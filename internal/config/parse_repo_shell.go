package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

// parseRepoSection extracts repo.*; repo.source is required.
func parseRepoSection(v cue.Value) (Repo, error) {
	var r Repo
	rv := v.LookupPath(cue.ParsePath("repo"))
	if !rv.Exists() {
		return r, fmt.Errorf("missing required field: repo")
	}
	if err := requireStringField(rv, "source"); err != nil {
		return r, fmt.Errorf("%v (in repo)", err)
	}
	_ = rv.LookupPath(cue.ParsePath("source")).Decode(&r.Source)
	r.HasBranchTemplate = lookupString(rv, "branchTemplate", &r.BranchTemplate)
	r.HasStartRef = lookupString(rv, "startRef", &r.StartRef)
	r.HasEndRef = lookupString(rv, "endRef", &r.EndRef)
	r.HasKeep = lookupBool(rv, "keep", &r.Keep)
	_ = lookupStrings(rv, "ignore", &r.Ignore)
	return r, nil
}

// parseShellSection extracts optional shell.* fields.
func parseShellSection(v cue.Value) Shell {
	var s Shell
	sv := v.LookupPath(cue.ParsePath("shell"))
	if !sv.Exists() {
		return s
	}
	s.HasSection = true
	s.HasProgram = lookupString(sv, "program", &s.Program)
	envv := sv.LookupPath(cue.ParsePath("env"))
	if envv.Exists() {
		tmp := map[string]string{}
		if err := envv.Decode(&tmp); err == nil {
			s.Env = tmp
			s.HasEnv = true
		}
	}
	s.HasTimeout = lookupInt(sv, "timeoutMs", &s.TimeoutMs)
	s.HasTermGrace = lookupInt(sv, "termGraceMs", &s.TermGraceMs)
	s.HasCaptureMax = lookupInt(sv, "captureMaxBytes", &s.CaptureMaxBytes)
	s.HasKillPG = lookupBool(sv, "killProcessGroup", &s.KillProcessGroup)
	return s
}

// parseTestsSection extracts optional tests.command.
func parseTestsSection(v cue.Value) Tests {
	var t Tests
	tv := v.LookupPath(cue.ParsePath("tests"))
	if !tv.Exists() {
		return t
	}
	t.HasCommand = lookupString(tv, "command", &t.Command)
	return t
}
