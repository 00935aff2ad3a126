package cli

import (
	"errors"

	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/session"
)

const invalidCredentialsMessage = "Invalid email or password"

// ErrorText renders err for the terminal.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}

	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		if authErr.Reason == session.ReasonNetwork {
			return client.Describe(client.ErrUnavailable).Message
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return invalidCredentialsMessage
	}

	if errors.Is(err, client.ErrUnauthorized) {
		return "Session expired, please sign in again"
	}

	return client.Describe(err).String()
}
