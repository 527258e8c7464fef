package listing

// Listing is one classified unit of a chapter. The set of implementations is
// closed: only the types in this package satisfy it.
type Listing interface {
	Position() int
	Kind() Kind
	// Accept dispatches to the Visitor method for the concrete kind.
	Accept(v Visitor) error
	sealed()
}

// Visitor has one method per listing kind. Adding a kind adds a method here,
// so every dispatcher stops compiling until it handles the new kind.
type Visitor interface {
	VisitCode(CodeListing) error
	VisitCommand(Command) error
	VisitCommandWithOutput(CommandWithOutput) error
	VisitTest(TestRun) error
	VisitNarrative(Narrative) error
}

// CodeListing is a source listing anchored to a commit label such as ch10l001.
type CodeListing struct {
	Pos      int
	Ref      string
	Filename string
	Text     string
	Diff     string
}

// Command is a shell command the reader is told to type.
type Command struct {
	Pos           int
	Command       string
	ExpectFailure bool
}

// CommandWithOutput is a shell command followed by the output the book shows.
type CommandWithOutput struct {
	Pos           int
	Command       string
	Expected      string
	ExpectFailure bool
}

// TestRun invokes the chapter's test command. Command overrides the
// configured test command when set.
type TestRun struct {
	Pos           int
	Command       string
	Expected      string
	ExpectFailure bool
}

// Narrative is prose with nothing to execute.
type Narrative struct {
	Pos  int
	Text string
}

func (l CodeListing) Position() int       { return l.Pos }
func (l Command) Position() int           { return l.Pos }
func (l CommandWithOutput) Position() int { return l.Pos }
func (l TestRun) Position() int           { return l.Pos }
func (l Narrative) Position() int         { return l.Pos }

func (CodeListing) Kind() Kind       { return KindCodeWithRef }
func (Command) Kind() Kind           { return KindCommand }
func (CommandWithOutput) Kind() Kind { return KindCommandWithOutput }
func (TestRun) Kind() Kind           { return KindTest }
func (Narrative) Kind() Kind         { return KindNarrative }

func (l CodeListing) Accept(v Visitor) error       { return v.VisitCode(l) }
func (l Command) Accept(v Visitor) error           { return v.VisitCommand(l) }
func (l CommandWithOutput) Accept(v Visitor) error { return v.VisitCommandWithOutput(l) }
func (l TestRun) Accept(v Visitor) error           { return v.VisitTest(l) }
func (l Narrative) Accept(v Visitor) error         { return v.VisitNarrative(l) }

func (CodeListing) sealed()       {}
func (Command) sealed()           {}
func (CommandWithOutput) sealed() {}
func (TestRun) sealed()           {}
func (Narrative) sealed()         {}
