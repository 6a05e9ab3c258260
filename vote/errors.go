package vote

import "errors"

var (
	// ErrMalformedPayload means the notification body does not have the
	// structure its content type promises.
	ErrMalformedPayload = errors.New("malformed pingback payload")

	// ErrUserNotFound is returned by a Ledger when no account has the name.
	ErrUserNotFound = errors.New("user not found")
)
