package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
)

// Error codes reported by Describe.
const (
	CodeNetworkError    = "NETWORK_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
)

const (
	networkMessage    = "Network error: Unable to reach the server"
	unexpectedMessage = "An unexpected error occurred"
)

// ErrorInfo is the user-facing shape of an error.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (i ErrorInfo) String() string {
	if i.Status != 0 {
		return fmt.Sprintf("%s (status %d)", i.Message, i.Status)
	}
	return i.Message
}

// Describe maps err to ErrorInfo. It has no side effects.
func Describe(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return ErrorInfo{Message: verr.Error(), Code: CodeValidationError, Details: verr.Fields}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HasResponse():
			info := ErrorInfo{Message: apiErr.Message, Code: apiErr.Code, Status: apiErr.Status}
			if info.Message == "" {
				info.Message = fmt.Sprintf("Server error: %d", apiErr.Status)
			}
			if len(apiErr.Details) > 0 {
				info.Details = string(apiErr.Details)
			}
			return info
		case errors.Is(apiErr, ErrUnavailable):
			return ErrorInfo{Message: networkMessage, Code: CodeNetworkError}
		}
	}

	if errors.Is(err, ErrUnavailable) {
		return ErrorInfo{Message: networkMessage, Code: CodeNetworkError}
	}

	msg := err.Error()
	if msg == "" {
		msg = unexpectedMessage
	}
	return ErrorInfo{Message: msg}
}
