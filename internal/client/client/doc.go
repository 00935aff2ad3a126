// Package client contains the client-side building blocks for talking to
// the task backend.
//
// # Overview
//
// The package provides:
//  1. The API contract consumers depend on (AuthAPI, TaskAPI).
//  2. HTTPClient, a REST implementation whose transport attaches the stored
//     bearer token to every request and reacts to 401 responses by
//     discarding the token and notifying registered UnauthorizedHandlers.
//  3. Local persistence bootstrap (InitDatabase) that opens the SQLite file
//     holding the token slot and applies the embedded goose migrations.
//
// # Error Handling
//
// Failures are returned as *APIError values wrapping one of the sentinel
// errors (ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrRejected,
// ErrServer, ErrMalformedResponse), so callers can match the class with
// errors.Is and still read status and server message. Describe turns any
// error into the user-facing ErrorInfo shape.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call honors ctx on top of
// the fixed per-request timeout.
package client
