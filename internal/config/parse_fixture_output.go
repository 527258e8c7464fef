package config

import "cuelang.org/go/cue"

// parseFixtureSection extracts optional fixture.* fields.
func parseFixtureSection(v cue.Value) Fixture {
	var f Fixture
	fv := v.LookupPath(cue.ParsePath("fixture"))
	if !fv.Exists() {
		return f
	}
	f.HasEnabled = lookupBool(fv, "enabled", &f.Enabled)
	f.HasDatabase = lookupString(fv, "database", &f.Database)
	f.HasBaseline = lookupString(fv, "baseline", &f.Baseline)
	_ = lookupString(fv, "baselineFile", &f.BaselineFile)
	f.HasResetCommand = lookupString(fv, "resetCommand", &f.ResetCommand)
	return f
}

// parseOutputSection extracts optional output.normalize and output.report.
func parseOutputSection(v cue.Value) Output {
	var o Output
	ov := v.LookupPath(cue.ParsePath("output"))
	if !ov.Exists() {
		return o
	}
	o.HasNormalize = lookupString(ov, "normalize", &o.Normalize)
	o.HasReport = lookupString(ov, "report", &o.Report)
	return o
}

// parseSanitySection extracts optional sanity.kinds.
func parseSanitySection(v cue.Value) Sanity {
	var s Sanity
	sv := v.LookupPath(cue.ParsePath("sanity"))
	if !sv.Exists() {
		return s
	}
	s.HasKinds = lookupStrings(sv, "kinds", &s.Kinds)
	return s
}

// parseDebugSection extracts optional debug.fastForward.*.
func parseDebugSection(v cue.Value) Debug {
	var d Debug
	fv := v.LookupPath(cue.ParsePath("debug.fastForward"))
	if !fv.Exists() {
		return d
	}
	ff := &d.FastForward
	_ = lookupBool(fv, "enabled", &ff.Enabled)
	ff.HasPosition = lookupInt(fv, "position", &ff.Position)
	ff.HasLabel = lookupString(fv, "label", &ff.Label)
	return d
}
