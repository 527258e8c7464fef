package sandbox

import (
	"errors"
	"fmt"
)

var (
	// ErrCheckout matches every *CheckoutError.
	ErrCheckout = errors.New("checkout failed")
	// ErrUnknownLabel matches every *UnknownLabelError.
	ErrUnknownLabel = errors.New("unknown label")

	errRefNotFound    = errors.New("reference not found")
	errCloneFailed    = errors.New("git clone failed")
	errWorktreeFailed = errors.New("git worktree unavailable")
	errObjectLookup   = errors.New("git object lookup failed")
)

// CheckoutError reports a reference that cannot be resolved or checked out.
type CheckoutError struct {
	Ref string
	Err error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout %s: %v", e.Ref, e.Err)
}

func (e *CheckoutError) Unwrap() error        { return e.Err }
func (e *CheckoutError) Is(target error) bool { return target == ErrCheckout }

// UnknownLabelError reports a commit label absent from the chapter history.
type UnknownLabelError struct {
	Label string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label %s", e.Label)
}

func (e *UnknownLabelError) Is(target error) bool { return target == ErrUnknownLabel }
