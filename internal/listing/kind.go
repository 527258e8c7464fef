package listing

// Kind identifies one member of the closed set of listing kinds.
type Kind int

const (
	KindCodeWithRef Kind = iota + 1
	KindCommand
	KindCommandWithOutput
	KindTest
	KindNarrative
)

var kindNames = map[Kind]string{
	KindCodeWithRef:       "code listing with git ref",
	KindCommand:           "shell command",
	KindCommandWithOutput: "shell command with expected output",
	KindTest:              "test",
	KindNarrative:         "narrative",
}

// String returns the human label used in logs, reports and sanity checks.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// kindAliases are the longer glossary names accepted in sanity checks.
var kindAliases = map[string]Kind{
	"code listing with git reference": KindCodeWithRef,
	"shell command with output":       KindCommandWithOutput,
	"test invocation":                 KindTest,
	"narrative-only":                  KindNarrative,
}

// ParseKind maps a label produced by String, or one of its glossary
// aliases, back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	k, ok := kindAliases[s]
	return k, ok
}

// MarshalText renders the kind label in JSON reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
