// Package nav records navigation intents between CLI views.
//
// Components that want the user to land somewhere else (the session after
// login, the gateway on a 401, the guard on a missing token) call Navigate.
// The REPL subscribes and switches views; one-shot commands only read the
// last destination.
package nav

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

// Navigator is the routing surface other packages depend on.
type Navigator interface {
	Navigate(ctx context.Context, path string, opts ...Option)
	Current() string
}

// Option tweaks a single navigation.
type Option func(*options)

type options struct {
	replace bool
}

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() Option {
	return func(o *options) {
		o.replace = true
	}
}

// Listener is called after every accepted navigation.
type Listener func(path string)

// Recorder is an in-memory Navigator with a history stack.
type Recorder struct {
	mu        sync.RWMutex
	history   []string
	listeners map[int]Listener
	nextID    int
	log       logging.Logger
}

// NewRecorder returns a Recorder positioned at start (may be "").
func NewRecorder(start string, log logging.Logger) *Recorder {
	if log == nil {
		log = logging.Nop()
	}
	r := &Recorder{listeners: map[int]Listener{}, log: log.With("component", "nav")}
	if start != "" {
		r.history = append(r.history, start)
	}
	return r
}

// Navigate moves to path. Only app-relative paths are accepted.
func (r *Recorder) Navigate(ctx context.Context, path string, opts ...Option) {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		r.log.Error(ctx, "invalid navigation path (must be relative)", "path", path)
		return
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	if o.replace && len(r.history) > 0 {
		r.history[len(r.history)-1] = path
	} else {
		r.history = append(r.history, path)
	}
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	r.log.Debug(ctx, "navigate", "path", path, "replace", o.replace)
	for _, l := range listeners {
		l(path)
	}
}

// Current returns the latest destination or "" before any navigation.
func (r *Recorder) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.history) == 0 {
		return ""
	}
	return r.history[len(r.history)-1]
}

// History returns a copy of every destination in order.
func (r *Recorder) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.history...)
}

// Subscribe registers l and returns a function that removes it.
func (r *Recorder) Subscribe(l Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}
