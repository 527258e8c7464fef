package fixture

import (
	"errors"
	"fmt"
)

// ErrFixtureReset matches every *FixtureResetError.
var ErrFixtureReset = errors.New("fixture reset failed")

// FixtureResetError reports that the baseline could not be established.
type FixtureResetError struct {
	Step string
	Err  error
}

func (e *FixtureResetError) Error() string {
	return fmt.Sprintf("fixture reset failed: %s: %v", e.Step, e.Err)
}

func (e *FixtureResetError) Unwrap() error        { return e.Err }
func (e *FixtureResetError) Is(target error) bool { return target == ErrFixtureReset }
