package ref

import "errors"

var (
	// ErrNotConfigured is returned when a Computed is read before SetMethod.
	ErrNotConfigured = errors.New("computed method is not set")
	ErrNoSlot        = errors.New("no such slot")
	ErrRejected      = errors.New("value rejected")
)
