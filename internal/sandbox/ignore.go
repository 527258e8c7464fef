package sandbox

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// parseIgnorePatterns turns configured gitignore-style lines into patterns
// rooted at the working copy.
func parseIgnorePatterns(lines []string) []gitignore.Pattern {
	var patterns []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns
}

// ignoreMatcher combines the working copy's .gitignore files with the
// configured patterns. Configured patterns take precedence.
func (t *Tree) ignoreMatcher() gitignore.Matcher {
	var patterns []gitignore.Pattern
	if wt, err := t.worktree(); err == nil {
		if ps, err := gitignore.ReadPatterns(wt.Filesystem, nil); err == nil {
			patterns = append(patterns, ps...)
		}
	}
	patterns = append(patterns, t.extraIgnore...)
	return gitignore.NewMatcher(patterns)
}

func ignored(m gitignore.Matcher, rel string, isDir bool) bool {
	if rel == "" || rel == "." {
		return false
	}
	return m.Match(strings.Split(rel, "/"), isDir)
}
