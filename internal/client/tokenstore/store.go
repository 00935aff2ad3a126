// Package tokenstore keeps the bearer token in a single persistent slot.
//
// The slot lives in the local key-value repository and is scoped to the
// backend origin. A Store without a repository is "unavailable": every call
// is a no-op and Get reports no token. Commands that run before (or without)
// local storage, such as `taskdesk version`, use that mode.
package tokenstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/taskdesk/internal/client/repositories/kv"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

type Store struct {
	repo   kv.Repository
	origin string
	log    logging.Logger
}

// New returns a Store persisting into repo under origin.
func New(repo kv.Repository, origin string, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{repo: repo, origin: origin, log: log.With("component", "tokenstore")}
}

// Unavailable returns a Store with no backing storage.
func Unavailable() *Store {
	return &Store{log: logging.Nop()}
}

// Available reports whether the store is backed by persistent storage.
func (s *Store) Available() bool {
	return s != nil && s.repo != nil
}

// Get returns the stored token or "" when there is none. Storage failures
// are logged and reported as "no token".
func (s *Store) Get(ctx context.Context) string {
	if !s.Available() {
		return ""
	}
	token, ok, err := s.repo.Get(ctx, s.origin, common.TokenStorageKey)
	if err != nil {
		s.log.Warn(ctx, "token read failed", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// Set stores token, replacing any previous one. Storing "" empties the slot.
func (s *Store) Set(ctx context.Context, token string) error {
	if !s.Available() {
		return nil
	}
	if token == "" {
		return s.Remove(ctx)
	}
	return s.repo.Set(ctx, s.origin, common.TokenStorageKey, token)
}

// Remove empties the slot. Removing from an empty slot is not an error.
func (s *Store) Remove(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	return s.repo.Delete(ctx, s.origin, common.TokenStorageKey)
}

// OriginOf reduces a base URL to scheme://host[:port], the scope under which
// the token is stored.
func OriginOf(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}
