package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// envelope is the backend's standard response wrapper. FastAPI-style error
// bodies only carry detail.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func (e *envelope) wrapped() bool {
	return e.Success != nil || len(e.Data) > 0
}

// unpack decodes a 2xx body into out. The body is either the bare value or
// an envelope whose data holds the value itself or an object with key.
func unpack(op string, status int, body []byte, key string, out any) error {
	body = bytes.TrimSpace(body)
	if out == nil {
		return nil
	}
	if len(body) == 0 {
		return &APIError{Op: op, Status: status, Err: fmt.Errorf("%w: empty body", ErrMalformedResponse)}
	}

	payload := json.RawMessage(body)
	if body[0] == '{' {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil && env.wrapped() {
			if env.Success != nil && !*env.Success {
				code, msg := failureOf(&env)
				return &APIError{Op: op, Status: status, Code: code, Message: msg, Details: body, Err: ErrRejected}
			}
			payload = env.Data
			if key != "" {
				var inner map[string]json.RawMessage
				if err := json.Unmarshal(payload, &inner); err == nil {
					if v, ok := inner[key]; ok {
						payload = v
					}
				}
			}
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &APIError{Op: op, Status: status, Details: body, Err: fmt.Errorf("%w: %w", ErrMalformedResponse, err)}
	}
	return nil
}

// failure builds the error for a non-2xx response.
func failure(op string, status int, body []byte) *APIError {
	e := &APIError{Op: op, Status: status, Err: statusError(status)}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return e
	}
	e.Details = body

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return e
	}
	e.Code, e.Message = failureOf(&env)
	return e
}

func failureOf(env *envelope) (code, message string) {
	if env.Error != nil {
		code = env.Error.Code
		message = env.Error.Message
	}
	if message == "" {
		message = env.Message
	}
	if message == "" {
		message = detailMessage(env.Detail)
	}
	return code, message
}

// detailMessage understands FastAPI detail values: a string, or a list of
// {loc, msg} validation items.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if n := len(it.Loc); n > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[n-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
