package location

import "errors"

var (
	// ErrUnsupported means no position source exists for the user at all,
	// as opposed to a source that exists but has nothing to report.
	ErrUnsupported         = errors.New("location capability unavailable")
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("position request timed out")
	ErrStorageWrite        = errors.New("location storage write failed")
	ErrDisabled            = errors.New("location sharing is disabled")
	ErrInvalidIdentity     = errors.New("invalid user identity")
	ErrValidation          = errors.New("validation error")
)
