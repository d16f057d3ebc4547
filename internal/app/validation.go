package app

import (
	"unicode/utf8"

	"chatfeed/internal/model"
)

// ValidatePost checks a submission before anything leaves the process.
// Lengths are counted in characters, not bytes.
func ValidatePost(author, body string) error {
	if author == "" || body == "" {
		return ErrMissingFields
	}
	if utf8.RuneCountInString(author) > model.MaxUsernameLength {
		return ErrAuthorTooLong
	}
	if utf8.RuneCountInString(body) > model.MaxContentLength {
		return ErrBodyTooLong
	}
	return nil
}
