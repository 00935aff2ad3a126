package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every request, including reading the body.
const DefaultTimeout = 10 * time.Second

const maxBodySize = 1 << 20

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	store   TokenStore
	log     logging.Logger

	mu       sync.RWMutex
	handlers []UnauthorizedHandler
}

var _ Client = (*HTTPClient)(nil)

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithTransport replaces the underlying round tripper. The token and 401
// handling are layered on top of it.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) {
		c.http.Transport = &authTransport{base: rt, client: c}
	}
}

// New builds a client for baseURL. A non-positive timeout means
// DefaultTimeout; a nil store means requests never carry a token.
func New(baseURL string, timeout time.Duration, store TokenStore, log logging.Logger, opts ...Option) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("base url is empty")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}

	c := &HTTPClient{
		baseURL: parsed,
		store:   store,
		log:     log.With("component", "api"),
	}
	c.http = &http.Client{Timeout: timeout}
	c.http.Transport = &authTransport{base: http.DefaultTransport, client: c}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnUnauthorized registers h to run after every 401 response.
func (c *HTTPClient) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

func (c *HTTPClient) unauthorized(ctx context.Context) {
	if c.store != nil {
		if err := c.store.Remove(ctx); err != nil {
			c.log.Warn(ctx, "token removal failed", "error", err)
		}
	}

	c.mu.RLock()
	handlers := append([]UnauthorizedHandler(nil), c.handlers...)
	c.mu.RUnlock()

	for _, h := range handlers {
		h(ctx)
	}
}

type anonymousKey struct{}

// anonymous marks a request that must neither carry the stored token nor
// trigger the unauthorized handlers: a 401 on login means bad credentials,
// not an expired session.
func anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

// authTransport is the request/response interceptor pair.
type authTransport struct {
	base   http.RoundTripper
	client *HTTPClient
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	anon := isAnonymous(ctx)

	req = req.Clone(ctx)
	req.Header.Set("Accept", "application/json")
	if req.Header.Get(common.RequestIDHeaderName) == "" {
		req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	if !anon && t.client.store != nil {
		if token := t.client.store.Get(ctx); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !anon {
		t.client.unauthorized(ctx)
	}
	return resp, nil
}

// do sends one request and returns the status and body. Transport failures
// come back as *APIError wrapping ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return 0, nil, &APIError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = buf
	}

	rel, err := url.Parse(path)
	if err != nil {
		return 0, nil, &APIError{Op: op, Err: err}
	}
	full := *c.baseURL
	full.Path = c.baseURL.Path + rel.Path

	req, err := http.NewRequestWithContext(ctx, method, full.String(), body)
	if err != nil {
		return 0, nil, &APIError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "op", op, "method", method, "path", path, "error", err)
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return 0, nil, &APIError{Op: op, Err: ctxErr}
		}
		return 0, nil, &APIError{
			Op:      op,
			Code:    CodeNetworkError,
			Message: networkMessage,
			Err:     fmt.Errorf("%w: %w", ErrUnavailable, err),
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, &APIError{
			Op:      op,
			Code:    CodeNetworkError,
			Message: networkMessage,
			Err:     fmt.Errorf("%w: read body: %w", ErrUnavailable, err),
		}
	}

	c.log.Debug(ctx, "request done",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(common.RequestIDHeaderName),
		"elapsed", time.Since(started),
	)
	return resp.StatusCode, data, nil
}

// call performs a request and decodes a 2xx body into out.
func (c *HTTPClient) call(ctx context.Context, op, method, path string, payload any, key string, out any) error {
	status, body, err := c.do(ctx, op, method, path, payload)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return failure(op, status, body)
	}
	return unpack(op, status, body, key, out)
}

// authPayload accepts both {token, user} and the OAuth2 password-flow
// {access_token} shapes.
type authPayload struct {
	Token       string       `json:"token"`
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (c *HTTPClient) authenticate(ctx context.Context, op, path string, payload any) (*AuthResult, error) {
	var p authPayload
	if err := c.call(anonymous(ctx), op, http.MethodPost, path, payload, "", &p); err != nil {
		return nil, err
	}
	token := p.Token
	if token == "" {
		token = p.AccessToken
	}
	if token == "" {
		return nil, &APIError{Op: op, Status: http.StatusOK, Err: fmt.Errorf("%w: no token", ErrMalformedResponse)}
	}
	return &AuthResult{Token: token, User: p.User}, nil
}

// Login exchanges credentials for a token.
func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "Login", "/auth/login", creds)
}

// Register creates an account and returns its first token.
func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (*AuthResult, error) {
	return c.authenticate(ctx, "Register", "/auth/register", reg)
}

// Logout tells the backend the current token is done with.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, "Logout", http.MethodPost, "/auth/logout", nil, "", nil)
}

// Me returns the account behind the stored token.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, "Me", http.MethodGet, "/auth/me", nil, "user", &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, &APIError{Op: "Me", Status: http.StatusOK, Err: fmt.Errorf("%w: no user id", ErrMalformedResponse)}
	}
	return &u, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.call(ctx, "ListTasks", http.MethodGet, "/api/tasks", nil, "tasks", &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	return c.task(ctx, "CreateTask", http.MethodPost, "/api/tasks", in)
}

func (c *HTTPClient) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return c.task(ctx, "GetTask", http.MethodGet, taskPath(id), nil)
}

// UpdateTask sends only the fields set in upd.
func (c *HTTPClient) UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	return c.task(ctx, "UpdateTask", http.MethodPut, taskPath(id), upd)
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.call(ctx, "DeleteTask", http.MethodDelete, taskPath(id), nil, "", nil)
}

// ToggleTask flips the completed flag server-side.
func (c *HTTPClient) ToggleTask(ctx context.Context, id string) (*models.Task, error) {
	return c.task(ctx, "ToggleTask", http.MethodPatch, taskPath(id)+"/complete", nil)
}

func (c *HTTPClient) task(ctx context.Context, op, method, path string, payload any) (*models.Task, error) {
	var t models.Task
	if err := c.call(ctx, op, method, path, payload, "task", &t); err != nil {
		return nil, err
	}
	if t.ID == "" {
		return nil, &APIError{Op: op, Status: http.StatusOK, Err: fmt.Errorf("%w: no task id", ErrMalformedResponse)}
	}
	return &t, nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}
