package homepage

import (
	"errors"
	"strings"
)

// ErrNoEmptyString is returned when a required string value is empty
var ErrNoEmptyString = errors.New("string value should not be empty")

// ErrInvalidCredentials is the single failure we return for a bad
// username/password pair; it never says which half was wrong
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrTicketNotFound unknown or already redeemed registration ticket
var ErrTicketNotFound = errors.New("ticket not found")

// ErrNameTaken the name has a live ticket or an existing account
var ErrNameTaken = errors.New("name already claimed")

// ErrShortTaken the caller-chosen short code already exists
var ErrShortTaken = errors.New("short code already taken")

// ErrLinkNotFound unknown short code
var ErrLinkNotFound = errors.New("short link not found")

// ErrUserNotFound the id no longer resolves to an account row
var ErrUserNotFound = errors.New("user not found")

// ErrMismatchedHashAndPassword password does not match the stored hash
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// IsUniqueViolation will check for a unique constraint conflict. Both the
// modernc and mattn sqlite drivers surface the constraint in the message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
