package services

import (
	"errors"
	"fmt"

	"github.com/carelink/apiserver/types"
)

// ErrInvalidCredentials is returned by Login for both unknown emails and
// wrong passwords, so callers cannot tell which factor failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidRefreshToken is returned by Refresh when the presented token
// does not verify or its user no longer exists.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// FieldErrors maps input field names to their validation messages.
type FieldErrors map[string][]string

func (f FieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

// ValidationError reports every failing field of a request at once.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// ProfileNotCreatedError signals that the role profile could not be
// created during registration. The whole unit of work is rolled back
// when this surfaces; it is a server-side fault, not a client error.
type ProfileNotCreatedError struct {
	Role types.Role
}

func (e *ProfileNotCreatedError) Error() string {
	return fmt.Sprintf("%s profile not created", e.Role.Title())
}

// ProfileNotFoundError signals that an authenticated user's role implies
// a profile that does not exist. This is a data-integrity fault distinct
// from an authentication failure.
type ProfileNotFoundError struct {
	Role types.Role
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("%s profile not found", e.Role.Title())
}
