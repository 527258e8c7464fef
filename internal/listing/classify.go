package listing

import "strings"

// Classifier maps raw blocks to listings. It holds only immutable settings,
// so Classify is deterministic and free of side effects.
type Classifier struct {
	// TestCommand is the chapter's test invocation; commands starting with it
	// are classified as test runs.
	TestCommand string
}

// Classify returns the listing for raw at position pos.
func (c Classifier) Classify(pos int, raw Raw) (Listing, error) {
	expectFailure := raw.ExpectFailure || hasClass(raw.Classes, "failing", "expected-failure")

	if hasClass(raw.Classes, "sourcecode", "code") {
		ref := strings.TrimSpace(raw.Ref)
		if ref == "" {
			return nil, unrecognized(pos, raw, "code listing without git ref")
		}
		if !commitLabelPattern.MatchString(ref) {
			return nil, unrecognized(pos, raw, "invalid git ref "+ref)
		}
		return CodeListing{
			Pos:      pos,
			Ref:      ref,
			Filename: strings.TrimSpace(raw.Filename),
			Text:     raw.Text,
			Diff:     raw.Diff,
		}, nil
	}

	isCommand := hasClass(raw.Classes, "userinput", "command") || hasPrompt(raw.Text)
	if hasClass(raw.Classes, "test") || (isCommand && c.isTestCommand(raw.Text)) {
		cmd := stripPrompt(raw.Text)
		if collapseSpaces(cmd) == c.normalizedTestCommand() {
			cmd = ""
		}
		return TestRun{Pos: pos, Command: cmd, Expected: raw.Output, ExpectFailure: expectFailure}, nil
	}

	if isCommand {
		cmd := stripPrompt(raw.Text)
		if cmd == "" {
			return nil, unrecognized(pos, raw, "empty command")
		}
		if strings.TrimSpace(raw.Output) != "" {
			return CommandWithOutput{Pos: pos, Command: cmd, Expected: raw.Output, ExpectFailure: expectFailure}, nil
		}
		return Command{Pos: pos, Command: cmd, ExpectFailure: expectFailure}, nil
	}

	if hasClass(raw.Classes, "narrative", "paragraph") || (len(raw.Classes) == 0 && raw.Ref == "" && raw.Output == "" && raw.Diff == "") {
		return Narrative{Pos: pos, Text: raw.Text}, nil
	}
	return nil, unrecognized(pos, raw, "no rule matches")
}

// ClassifyAll classifies every raw block of a manifest in document order.
func (c Classifier) ClassifyAll(raws []Raw) ([]Listing, error) {
	out := make([]Listing, 0, len(raws))
	for i, r := range raws {
		l, err := c.Classify(i, r)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (c Classifier) isTestCommand(text string) bool {
	tc := c.normalizedTestCommand()
	if tc == "" {
		return false
	}
	cmd := collapseSpaces(stripPrompt(text))
	return cmd == tc || strings.HasPrefix(cmd, tc+" ")
}

func (c Classifier) normalizedTestCommand() string {
	return collapseSpaces(c.TestCommand)
}

func unrecognized(pos int, raw Raw, reason string) error {
	return &UnrecognizedKindError{Position: pos, Classes: append([]string(nil), raw.Classes...), Reason: reason}
}
