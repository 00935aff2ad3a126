// Package kv persists small string values in the local SQLite database.
//
// Every value is scoped to an origin (scheme://host[:port] of the backend the
// value belongs to), so switching the configured API base URL never leaks a
// credential to a different server.
package kv

import "context"

type Repository interface {
	// Get returns the value and true, or "" and false when the slot is empty.
	Get(ctx context.Context, origin, key string) (string, bool, error)
	// Set creates or overwrites the slot.
	Set(ctx context.Context, origin, key, value string) error
	// Delete empties the slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context, origin, key string) error
}
