// Package guard gates protected views on the session.
//
// A Guard is created per mount of a protected view. It starts in
// StateChecking, waits for the session to finish loading and then moves,
// exactly once, to StateAuthorized or StateRedirecting. Redirecting sends
// the user to the login view.
package guard

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/taskdesk/internal/client/nav"
	"github.com/dmitrijs2005/taskdesk/internal/common"
)

type State int

const (
	StateChecking State = iota
	StateAuthorized
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthorized:
		return "authorized"
	case StateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// Mode selects the auth predicate.
type Mode int

const (
	// PresenceCheck admits any held token.
	PresenceCheck Mode = iota
	// ExpiryCheck also rejects expired tokens, dropping them.
	ExpiryCheck
)

// Session is what the guard reads from the session controller.
type Session interface {
	Ready() <-chan struct{}
	IsAuthenticated() bool
	CheckAuthenticated(ctx context.Context) bool
}

type Guard struct {
	session Session
	nav     nav.Navigator
	mode    Mode

	mu    sync.Mutex
	state State
}

// New returns a guard in StateChecking.
func New(session Session, navigator nav.Navigator, mode Mode) *Guard {
	return &Guard{session: session, nav: navigator, mode: mode}
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Resolve waits for the session to be ready and decides. Later calls
// return the first decision. If ctx ends first the guard stays in
// StateChecking and the context error is returned.
func (g *Guard) Resolve(ctx context.Context) (State, error) {
	if s := g.State(); s != StateChecking {
		return s, nil
	}

	select {
	case <-g.session.Ready():
	case <-ctx.Done():
		return StateChecking, ctx.Err()
	}

	g.mu.Lock()
	if g.state != StateChecking {
		s := g.state
		g.mu.Unlock()
		return s, nil
	}

	if g.authenticated(ctx) {
		g.state = StateAuthorized
		g.mu.Unlock()
		return StateAuthorized, nil
	}
	g.state = StateRedirecting
	g.mu.Unlock()

	if g.nav != nil {
		g.nav.Navigate(ctx, common.LoginPath, nav.WithReplace())
	}
	return StateRedirecting, nil
}

func (g *Guard) authenticated(ctx context.Context) bool {
	if g.mode == ExpiryCheck {
		return g.session.CheckAuthenticated(ctx)
	}
	return g.session.IsAuthenticated()
}

// Render calls placeholder while checking, nothing when redirecting and
// view when authorized. It does not wait; call Resolve first to block.
func (g *Guard) Render(placeholder, view func()) {
	switch g.State() {
	case StateChecking:
		if placeholder != nil {
			placeholder()
		}
	case StateAuthorized:
		if view != nil {
			view()
		}
	}
}

// Run resolves the guard and renders the outcome. The placeholder is shown
// only if the session is still loading.
func (g *Guard) Run(ctx context.Context, placeholder, view func()) error {
	select {
	case <-g.session.Ready():
	default:
		g.Render(placeholder, nil)
	}
	if _, err := g.Resolve(ctx); err != nil {
		return err
	}
	g.Render(nil, view)
	return nil
}
