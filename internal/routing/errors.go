package routing

import (
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced to callers
const (
	CodeInvalidWaypoints    = "invalid_waypoints"
	CodeInvalidCoordinates  = "invalid_coordinates"
	CodeInvalidVehicle      = "invalid_vehicle_dimension"
	CodeProviderUnavailable = "provider_unavailable"
	CodeAllProvidersDown    = "all_providers_unavailable"
)

// Error is the typed routing failure. Recoverable errors may succeed on
// the fallback provider; non-recoverable errors are terminal and must
// not be retried by callers expecting a different outcome.
type Error struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Provider    string `json:"provider,omitempty"`
	Recoverable bool   `json:"recoverable"`
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is a request validation
// failure, as opposed to a provider-side one
func IsValidationError(err error) bool {
	var rErr *Error
	if !errors.As(err, &rErr) {
		return false
	}
	switch rErr.Code {
	case CodeInvalidWaypoints, CodeInvalidCoordinates, CodeInvalidVehicle:
		return true
	}
	return false
}

// newValidationError builds a non-recoverable request validation error
func newValidationError(code, format string, args ...interface{}) *Error {
	return &Error{
		Code:        code,
		Message:     fmt.Sprintf(format, args...),
		Recoverable: false,
	}
}

// newProviderError tags a provider-side failure. Recoverable while the
// fallback has not been tried yet.
func newProviderError(provider string, recoverable bool, err error) *Error {
	return &Error{
		Code:        CodeProviderUnavailable,
		Message:     err.Error(),
		Provider:    provider,
		Recoverable: recoverable,
	}
}
