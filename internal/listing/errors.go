package listing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedKind matches every classification failure.
var ErrUnrecognizedKind = errors.New("unrecognized listing kind")

// UnrecognizedKindError reports a raw block no classification rule accepts.
type UnrecognizedKindError struct {
	Position int
	Classes  []string
	Reason   string
}

func (e *UnrecognizedKindError) Error() string {
	classes := strings.Join(e.Classes, ",")
	if classes == "" {
		classes = "-"
	}
	return fmt.Sprintf("listing %d: unrecognized listing kind (classes=%s): %s", e.Position, classes, e.Reason)
}

func (e *UnrecognizedKindError) Is(target error) bool { return target == ErrUnrecognizedKind }
