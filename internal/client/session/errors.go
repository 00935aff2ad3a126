package session

import "fmt"

// Reasons carried by AuthError.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonNetwork            = "network"
)

// AuthError is returned by Login and Signup when the backend refused the
// credentials or could not be reached.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case ReasonNetwork:
		return fmt.Sprintf("authentication failed: network: %v", e.Err)
	default:
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
}

func (e *AuthError) Unwrap() error { return e.Err }
