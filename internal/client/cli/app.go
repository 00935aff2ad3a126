package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/config"
	"github.com/dmitrijs2005/taskdesk/internal/client/guard"
	"github.com/dmitrijs2005/taskdesk/internal/client/nav"
	"github.com/dmitrijs2005/taskdesk/internal/client/services"
	"github.com/dmitrijs2005/taskdesk/internal/client/session"
	"github.com/dmitrijs2005/taskdesk/internal/client/tokenstore"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

// ErrNotSignedIn is returned by protected commands when the guard redirects.
var ErrNotSignedIn = errors.New("not signed in: run `taskdesk login` first")

type App struct {
	config    *config.Config
	log       logging.Logger
	repos     *client.Repositories
	store     *tokenstore.Store
	api       *client.HTTPClient
	session   *session.Controller
	tasks     services.TaskService
	nav       *nav.Recorder
	guardMode guard.Mode
	reader    *bufio.Reader
	out       io.Writer
}

// AppOption customizes an App.
type AppOption func(*App)

// WithIO sets where prompts read from and where command output goes.
func WithIO(in io.Reader, out io.Writer) AppOption {
	return func(a *App) {
		a.reader = bufio.NewReader(in)
		a.out = out
	}
}

// WithGuardMode selects how protected commands decide that a session exists.
func WithGuardMode(m guard.Mode) AppOption {
	return func(a *App) {
		a.guardMode = m
	}
}

// NewApp wires storage, the API client and the session for cfg.
//
// A store file that cannot be opened is not fatal: the token is then kept
// in memory for the life of the process.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, opts ...AppOption) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{
		config: cfg,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}

	origin, err := tokenstore.OriginOf(cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}

	a.repos = a.openStorage(ctx)
	if a.repos != nil {
		a.store = tokenstore.New(a.repos.KV, origin, log)
	} else {
		a.store = tokenstore.Unavailable()
	}

	a.api, err = client.New(cfg.APIBaseURL, cfg.RequestTimeout, a.store, log)
	if err != nil {
		_ = a.repos.Close()
		return nil, err
	}

	a.nav = nav.NewRecorder("", log)
	a.session = session.New(a.store, a.api, a.nav, log)
	a.api.OnUnauthorized(a.session.Invalidate)
	a.api.OnUnauthorized(func(ctx context.Context) {
		a.nav.Navigate(ctx, common.LoginPath, nav.WithReplace())
	})
	a.tasks = services.NewTaskService(a.api)

	return a, nil
}

func (a *App) openStorage(ctx context.Context) *client.Repositories {
	if a.config.StorageEnabled() {
		repos, err := client.InitDatabase(ctx, a.config.StorePath)
		if err == nil {
			return repos
		}
		a.log.Warn(ctx, "token store unavailable, session will not persist",
			"path", a.config.StorePath, "error", err)
	}

	repos, err := client.InitMemoryDatabase(ctx)
	if err != nil {
		a.log.Error(ctx, "in-memory store failed", "error", err)
		return nil
	}
	return repos
}

// Close releases local storage.
func (a *App) Close() error {
	return a.repos.Close()
}

// Start restores the session in the background. Protected commands wait for
// it through the guard.
func (a *App) Start(ctx context.Context) {
	go func() {
		a.session.Bootstrap(ctx)
		if a.session.ExpiresSoon() {
			a.log.Warn(ctx, "session expires soon, sign in again to renew it")
		}
	}()
}

func (a *App) waitReady(ctx context.Context) error {
	select {
	case <-a.session.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// protect runs view behind a fresh guard, as a protected page would mount.
func (a *App) protect(ctx context.Context, view func(ctx context.Context) error) error {
	g := guard.New(a.session, a.nav, a.guardMode)

	var viewErr error
	err := g.Run(ctx,
		func() { fmt.Fprintln(a.out, "Loading...") },
		func() { viewErr = view(ctx) },
	)
	if err != nil {
		return err
	}
	if g.State() == guard.StateRedirecting {
		return ErrNotSignedIn
	}
	return viewErr
}

// status is shown in the REPL prompt.
func (a *App) status() string {
	s := a.nav.Current()
	if u := a.session.CurrentUser(); u != nil {
		s = u.DisplayName() + " " + s
	}
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}
