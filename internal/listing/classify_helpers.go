package listing

import (
	"regexp"
	"strings"
)

const shellPrompt = "$ "

// commitLabelPattern matches labels such as ch10l001 or ch10l008-1.
var commitLabelPattern = regexp.MustCompile(`^ch\d+l\d+(-\d+)?$`)

func hasClass(classes []string, names ...string) bool {
	for _, c := range classes {
		c = strings.ToLower(strings.TrimSpace(c))
		for _, n := range names {
			if c == n {
				return true
			}
		}
	}
	return false
}

func hasPrompt(text string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, " \t\n"), shellPrompt)
}

// stripPrompt removes the leading "$ " prompt.
func stripPrompt(text string) string {
	s := strings.TrimSpace(text)
	if s == strings.TrimSpace(shellPrompt) {
		return ""
	}
	if strings.HasPrefix(s, shellPrompt) {
		s = strings.TrimSpace(s[len(shellPrompt):])
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
