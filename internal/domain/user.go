// Package domain holds transport-agnostic entities shared by services, stores
// and adapters. Constructors validate their input and return typed errors.
package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	id "github.com/leynos/wildside-sub003/pkg/domain"
	"github.com/leynos/wildside-sub003/pkg/validate"
)

// DisplayNameRejection is the normalised reason a display name was refused.
type DisplayNameRejection string

const (
	DisplayNameEmpty        DisplayNameRejection = "empty"
	DisplayNameTooShort     DisplayNameRejection = "too_short"
	DisplayNameTooLong      DisplayNameRejection = "too_long"
	DisplayNameInvalidChars DisplayNameRejection = "invalid_chars"
)

// DisplayNamePolicyMessage is the human readable rule shown to clients for any rejection.
var DisplayNamePolicyMessage = fmt.Sprintf(
	"Invalid display name. Only alphanumeric characters, spaces, and underscores are allowed. Length must be between %d and %d characters.",
	validate.DisplayNameMin, validate.DisplayNameMax,
)

// DisplayNameError reports why a display name failed validation.
type DisplayNameError struct {
	Reason DisplayNameRejection
	// Err is set when the validation pattern itself is unusable.
	Err error
}

func (e *DisplayNameError) Error() string {
	switch e.Reason {
	case DisplayNameEmpty:
		return "display name must not be empty"
	case DisplayNameTooShort:
		return fmt.Sprintf("display name must be at least %d characters", validate.DisplayNameMin)
	case DisplayNameTooLong:
		return fmt.Sprintf("display name must be at most %d characters", validate.DisplayNameMax)
	default:
		if e.Err != nil {
			return "display name pattern unavailable: " + e.Err.Error()
		}
		return "display name contains invalid characters"
	}
}

func (e *DisplayNameError) Unwrap() error { return e.Err }

// DisplayName is a validated user-facing name.
type DisplayName string

// NewDisplayName validates raw input. Length is counted in characters.
func NewDisplayName(raw string) (DisplayName, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &DisplayNameError{Reason: DisplayNameEmpty}
	}
	n := utf8.RuneCountInString(raw)
	if n < validate.DisplayNameMin {
		return "", &DisplayNameError{Reason: DisplayNameTooShort}
	}
	if n > validate.DisplayNameMax {
		return "", &DisplayNameError{Reason: DisplayNameTooLong}
	}
	ok, err := validate.DisplayName(raw)
	if err != nil {
		return "", &DisplayNameError{Reason: DisplayNameInvalidChars, Err: err}
	}
	if !ok {
		return "", &DisplayNameError{Reason: DisplayNameInvalidChars}
	}
	return DisplayName(raw), nil
}

func (d DisplayName) String() string { return string(d) }

// User is a registered account.
type User struct {
	ID          id.UserID
	DisplayName DisplayName
}
