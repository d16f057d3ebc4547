package moderation

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks any failure to obtain a verdict: transport errors,
// timeouts, non-2xx replies or undecodable bodies.
var ErrUnavailable = errors.New("moderation classifier unavailable")

type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("moderation %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() []error {
	return []error{ErrUnavailable, e.Cause}
}

func unavailable(op string, cause error) error {
	return &Error{Op: op, Cause: cause}
}
