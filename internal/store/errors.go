package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when an insert collides with the unique
// index on users.email.
var ErrEmailTaken = errors.New("email already registered")

// Postgres integrity violation code for duplicate keys.
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
