package replay

import (
	"context"
	"regexp"
	"strings"

	"github.com/flarebyte/bookreplay/internal/textdiff"
)

// elision stands for any number of output lines, or any text inside a line.
const elision = "[...]"

var (
	durationPattern = regexp.MustCompile(`\bin \d+\.\d+s\b`)
	addressPattern  = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)
)

// Comparer decides whether observed output matches the text the book shows.
type Comparer struct {
	Normalizer *LuaNormalizer
}

// Compare returns an *OutputMismatchError when actual does not match
// expected once both are normalised.
func (c Comparer) Compare(ctx context.Context, command, expected, actual string) error {
	exp, err := c.normalize(ctx, expected)
	if err != nil {
		return err
	}
	act, err := c.normalize(ctx, actual)
	if err != nil {
		return err
	}
	if outputMatches(exp, act) {
		return nil
	}
	return &OutputMismatchError{
		Command:  command,
		Expected: exp,
		Actual:   act,
		Diff:     textdiff.Lines(exp, act),
	}
}

func (c Comparer) normalize(ctx context.Context, s string) (string, error) {
	s = normalizeOutput(s)
	if c.Normalizer == nil {
		return s, nil
	}
	out, err := c.Normalizer.Apply(ctx, s)
	if err != nil {
		return "", err
	}
	return normalizeOutput(out), nil
}

// normalizeOutput folds line endings, trims trailing whitespace and blank
// edges, and masks timings and memory addresses.
func normalizeOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		l = strings.TrimRight(l, " \t")
		l = durationPattern.ReplaceAllString(l, "in X.XXXs")
		l = addressPattern.ReplaceAllString(l, "0x...")
		lines[i] = l
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func outputMatches(expected, actual string) bool {
	if !strings.Contains(expected, elision) {
		return expected == actual
	}
	return elidedMatch(splitLines(expected), splitLines(actual))
}

// elidedMatch treats "[...]" lines as gaps between segments that must appear
// contiguously and in order. Without a leading or trailing gap, the first or
// last segment is anchored to the start or end of actual.
func elidedMatch(expected, actual []string) bool {
	var segments [][]string
	var cur []string
	for _, l := range expected {
		if strings.TrimSpace(l) == elision {
			segments = append(segments, cur)
			cur = nil
			continue
		}
		cur = append(cur, l)
	}
	segments = append(segments, cur)

	pos := 0
	last := len(segments) - 1
	for i, seg := range segments {
		switch {
		case len(seg) == 0:
			continue
		case i == 0:
			if !segmentAt(seg, actual, 0) {
				return false
			}
			pos = len(seg)
		case i == last:
			start := len(actual) - len(seg)
			if start < pos || !segmentAt(seg, actual, start) {
				return false
			}
			pos = len(actual)
		default:
			at := findSegment(seg, actual, pos)
			if at < 0 {
				return false
			}
			pos = at + len(seg)
		}
	}
	if len(segments) == 1 {
		return pos == len(actual)
	}
	return true
}

func findSegment(seg, actual []string, from int) int {
	for i := from; i+len(seg) <= len(actual); i++ {
		if segmentAt(seg, actual, i) {
			return i
		}
	}
	return -1
}

func segmentAt(seg, actual []string, at int) bool {
	if at < 0 || at+len(seg) > len(actual) {
		return false
	}
	for j, l := range seg {
		if !lineMatches(l, actual[at+j]) {
			return false
		}
	}
	return true
}

// lineMatches compares one line, allowing inline "[...]" wildcards.
func lineMatches(expected, actual string) bool {
	if !strings.Contains(expected, elision) {
		return expected == actual
	}
	parts := strings.Split(expected, elision)
	if !strings.HasPrefix(actual, parts[0]) {
		return false
	}
	rest := actual[len(parts[0]):]
	for _, p := range parts[1 : len(parts)-1] {
		i := strings.Index(rest, p)
		if i < 0 {
			return false
		}
		rest = rest[i+len(p):]
	}
	return strings.HasSuffix(rest, parts[len(parts)-1])
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
