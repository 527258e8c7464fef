package replay

// State is the cursor's position in its lifecycle.
type State int

const (
	// Pending means the listing at the current position is next.
	Pending State = iota
	// Processing means a handler is running for the current position.
	Processing
	// Advanced means the position just moved forward.
	Advanced
	// Done means every position has been consumed.
	Done
	// Halted means a handler failed; the cursor never moves again.
	Halted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Processing:
		return "processing"
	case Advanced:
		return "advanced"
	case Done:
		return "done"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}
