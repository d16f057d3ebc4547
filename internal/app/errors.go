package app

import "errors"

var (
	ErrMissingFields = &ValidationError{Reason: "missing fields"}
	ErrAuthorTooLong = &ValidationError{Field: "username", Reason: "author too long"}
	ErrBodyTooLong   = &ValidationError{Field: "content", Reason: "body too long"}

	ErrStoreWrite = errors.New("store write failed")
	ErrStoreRead  = errors.New("store read failed")
)

// ValidationError is returned for malformed client input. The package-level
// values above are the only instances, so errors.Is works on them.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
