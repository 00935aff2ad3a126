// Package session owns the signed-in state of the CLI: who the user is, the
// bearer token, and whether the initial read of the token slot is done.
//
// A Controller is created once by the App and handed to everything that
// needs to know about the session. It is the only writer of the token slot
// apart from the API gateway, which drops the token on a 401 and then calls
// Invalidate.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/nav"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/jwtx"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

// TokenStore is the persistent token slot.
type TokenStore interface {
	Get(ctx context.Context) string
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

type Controller struct {
	store TokenStore
	api   client.AuthAPI
	nav   nav.Navigator
	log   logging.Logger

	mu      sync.RWMutex
	user    *models.User
	token   string
	loading bool

	once  sync.Once
	ready chan struct{}
}

// New returns a Controller in the loading state. Call Bootstrap to leave it.
func New(store TokenStore, api client.AuthAPI, navigator nav.Navigator, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{
		store:   store,
		api:     api,
		nav:     navigator,
		log:     log.With("component", "session"),
		loading: true,
		ready:   make(chan struct{}),
	}
}

// CurrentUser returns a copy of the signed-in user or nil.
func (c *Controller) CurrentUser() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// CurrentToken returns the held token or "".
func (c *Controller) CurrentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// IsLoading reports whether Bootstrap has not finished yet.
func (c *Controller) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Ready is closed once Bootstrap finishes.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// IsAuthenticated reports whether a token is held. Expiry is not checked
// here; see CheckAuthenticated.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Bootstrap restores the session from the token slot. Only the first call
// does anything; every call returns after loading is false.
func (c *Controller) Bootstrap(ctx context.Context) {
	c.once.Do(func() {
		defer c.finishLoading()

		token := c.get(ctx)
		if token == "" {
			return
		}

		user, ok := userFromToken(token)
		if !ok {
			c.log.Warn(ctx, "stored token is unreadable, discarding")
			c.remove(ctx)
			return
		}

		c.mu.Lock()
		c.user = user
		c.token = token
		c.mu.Unlock()
		c.log.Debug(ctx, "session restored", "user_id", user.ID)
	})
}

func (c *Controller) finishLoading() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
	close(c.ready)
}

// Login validates creds, authenticates against the backend and moves to the
// task list.
func (c *Controller) Login(ctx context.Context, email, password string) (*models.User, error) {
	creds := models.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if c.api == nil {
		return nil, &AuthError{Reason: ReasonNetwork, Err: client.ErrUnavailable}
	}

	res, err := c.api.Login(ctx, creds)
	if err != nil {
		return nil, authError(err)
	}
	return c.establish(ctx, res)
}

// Signup registers a new account and signs it in.
func (c *Controller) Signup(ctx context.Context, email, password, name string) (*models.User, error) {
	reg := models.Registration{Email: email, Password: password, Name: name}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	if c.api == nil {
		return nil, &AuthError{Reason: ReasonNetwork, Err: client.ErrUnavailable}
	}

	res, err := c.api.Register(ctx, reg)
	if err != nil {
		return nil, authError(err)
	}
	return c.establish(ctx, res)
}

func authError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.HasResponse() {
		return &AuthError{Reason: ReasonInvalidCredentials, Err: err}
	}
	if errors.Is(err, client.ErrUnavailable) {
		return &AuthError{Reason: ReasonNetwork, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &AuthError{Reason: ReasonInvalidCredentials, Err: err}
}

func (c *Controller) establish(ctx context.Context, res *client.AuthResult) (*models.User, error) {
	user := res.User
	if user == nil || user.ID == "" {
		derived, ok := userFromToken(res.Token)
		if !ok {
			derived = &models.User{ID: models.UnknownUserID}
		}
		if user != nil && derived.Email == "" {
			derived.Email = user.Email
		}
		user = derived
	}

	if c.store != nil {
		if err := c.store.Set(ctx, res.Token); err != nil {
			c.log.Warn(ctx, "token write failed", "error", err)
		}
	}

	c.mu.Lock()
	c.user = user
	c.token = res.Token
	c.mu.Unlock()

	c.log.Info(ctx, "signed in", "user_id", user.ID)
	c.navigate(ctx, common.TodosPath)

	u := *user
	return &u, nil
}

// Logout ends the session locally and, best effort, on the backend. It is
// safe to call without a session.
func (c *Controller) Logout(ctx context.Context) {
	if c.CurrentToken() != "" && c.api != nil {
		if err := c.api.Logout(ctx); err != nil {
			c.log.Debug(ctx, "server logout failed", "error", err)
		}
	}

	c.clear()
	c.remove(ctx)
	c.navigate(ctx, common.LoginPath)
}

// Invalidate forgets the in-memory session without touching the slot. The
// gateway calls it after it has already removed a rejected token.
func (c *Controller) Invalidate(ctx context.Context) {
	if c.CurrentToken() != "" {
		c.log.Info(ctx, "session rejected by server")
	}
	c.clear()
}

// CheckAuthenticated is the expiry-aware variant of IsAuthenticated. A held
// token that is expired or unreadable is removed and the session cleared.
func (c *Controller) CheckAuthenticated(ctx context.Context) bool {
	token := c.CurrentToken()
	if token == "" {
		return false
	}
	if !jwtx.IsExpired(token) {
		return true
	}

	c.log.Info(ctx, "token expired")
	c.clear()
	c.remove(ctx)
	return false
}

// ExpiresSoon reports whether the held token is within the default window
// of its expiry.
func (c *Controller) ExpiresSoon() bool {
	token := c.CurrentToken()
	return token != "" && jwtx.IsAboutToExpire(token, jwtx.DefaultExpiryWindow)
}

// ExpiresAt returns the exp of the held token.
func (c *Controller) ExpiresAt() (time.Time, bool) {
	token := c.CurrentToken()
	if token == "" {
		return time.Time{}, false
	}
	return jwtx.Expiration(token)
}

// RefreshUser replaces the claims-derived user with the backend's view.
func (c *Controller) RefreshUser(ctx context.Context) (*models.User, error) {
	if c.CurrentToken() == "" {
		return nil, client.ErrUnauthorized
	}
	if c.api == nil {
		return nil, client.ErrUnavailable
	}

	u, err := c.api.Me(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.token != "" {
		c.user = u
	}
	c.mu.Unlock()

	cp := *u
	return &cp, nil
}

func (c *Controller) clear() {
	c.mu.Lock()
	c.user = nil
	c.token = ""
	c.mu.Unlock()
}

func (c *Controller) get(ctx context.Context) string {
	if c.store == nil {
		return ""
	}
	return c.store.Get(ctx)
}

func (c *Controller) remove(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Remove(ctx); err != nil {
		c.log.Warn(ctx, "token removal failed", "error", err)
	}
}

func (c *Controller) navigate(ctx context.Context, path string) {
	if c.nav != nil {
		c.nav.Navigate(ctx, path)
	}
}

// userFromToken builds the user from token claims: the user claim when
// present, otherwise {id: userId|sub|"unknown"} plus email.
func userFromToken(token string) (*models.User, bool) {
	claims, ok := jwtx.Decode(token)
	if !ok {
		return nil, false
	}
	if u, ok := claims.User(); ok {
		return u, true
	}

	id, ok := claims.Subject()
	if !ok {
		id = models.UnknownUserID
	}
	u := &models.User{ID: id}
	if email, ok := claims.String("email"); ok {
		u.Email = email
	}
	return u, true
}
