package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/client/config"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "secret"
)

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func validToken(t *testing.T) string {
	return mint(t, jwt.MapClaims{
		"sub":   "u-1",
		"email": testEmail,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
}

// taskBackend is an in-memory task tracker speaking the envelope format.
type taskBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	token    string
	tasks    []models.Task
	requests int
	logouts  int
}

func newTaskBackend(t *testing.T) *taskBackend {
	t.Helper()
	b := &taskBackend{t: t, token: validToken(t)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("POST /auth/logout", b.authed(b.logout))
	mux.HandleFunc("GET /auth/me", b.authed(b.me))
	mux.HandleFunc("GET /api/tasks", b.authed(b.list))
	mux.HandleFunc("POST /api/tasks", b.authed(b.create))
	mux.HandleFunc("GET /api/tasks/{id}", b.authed(b.get))
	mux.HandleFunc("PUT /api/tasks/{id}", b.authed(b.update))
	mux.HandleFunc("DELETE /api/tasks/{id}", b.authed(b.remove))
	mux.HandleFunc("PATCH /api/tasks/{id}/complete", b.authed(b.toggle))

	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests++
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *taskBackend) URL() string { return b.srv.URL }

func (b *taskBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

// revoke makes the server reject the current token.
func (b *taskBackend) revoke() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = "revoked"
}

func (b *taskBackend) snapshot() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Task(nil), b.tasks...)
}

func (b *taskBackend) seed(title string, done bool) models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	task := models.Task{ID: uuid.NewString(), Title: title, Completed: done, UserID: "u-1", CreatedAt: "2024-05-01T10:00:00"}
	b.tasks = append(b.tasks, task)
	return task
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

func (b *taskBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		want := "Bearer " + b.token
		b.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}

func (b *taskBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	_ = json.NewDecoder(r.Body).Decode(&creds)
	if creds.Email != testEmail || creds.Password != testPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Incorrect email or password"})
		return
	}
	b.mu.Lock()
	token := b.token
	b.mu.Unlock()
	ok(w, http.StatusOK, map[string]any{"token": token, "user": map[string]any{"id": "u-1", "email": testEmail}})
}

func (b *taskBackend) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	_ = json.NewDecoder(r.Body).Decode(&reg)
	if reg.Email == testEmail {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Email already registered"})
		return
	}
	b.mu.Lock()
	token := b.token
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{
		"access_token": token,
		"user":         map[string]any{"id": "u-2", "email": reg.Email, "name": reg.Name},
	})
}

func (b *taskBackend) logout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.logouts++
	b.mu.Unlock()
	ok(w, http.StatusOK, nil)
}

func (b *taskBackend) me(w http.ResponseWriter, _ *http.Request) {
	ok(w, http.StatusOK, map[string]any{"user": map[string]any{
		"id": "u-1", "email": testEmail, "name": "Alice", "created_at": "2024-01-01T00:00:00",
	}})
}

func (b *taskBackend) list(w http.ResponseWriter, _ *http.Request) {
	ok(w, http.StatusOK, map[string]any{"tasks": b.snapshot()})
}

func (b *taskBackend) create(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	task := models.Task{ID: uuid.NewString(), Title: in.Title, Description: in.Description, Completed: in.Completed, UserID: "u-1"}
	b.tasks = append(b.tasks, task)
	b.mu.Unlock()
	ok(w, http.StatusCreated, map[string]any{"task": task})
}

// find calls fn with the task named by the path under the lock.
func (b *taskBackend) find(w http.ResponseWriter, r *http.Request, fn func(i int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == r.PathValue("id") {
			fn(i)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Task not found"})
}

func (b *taskBackend) get(w http.ResponseWriter, r *http.Request) {
	b.find(w, r, func(i int) { ok(w, http.StatusOK, map[string]any{"task": b.tasks[i]}) })
}

func (b *taskBackend) update(w http.ResponseWriter, r *http.Request) {
	var upd models.TaskUpdate
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &upd)
	b.find(w, r, func(i int) {
		if upd.Title != nil {
			b.tasks[i].Title = *upd.Title
		}
		if upd.Description != nil {
			b.tasks[i].Description = upd.Description
		}
		if upd.Completed != nil {
			b.tasks[i].Completed = *upd.Completed
		}
		ok(w, http.StatusOK, map[string]any{"task": b.tasks[i]})
	})
}

func (b *taskBackend) remove(w http.ResponseWriter, r *http.Request) {
	b.find(w, r, func(i int) {
		b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
		ok(w, http.StatusOK, nil)
	})
}

func (b *taskBackend) toggle(w http.ResponseWriter, r *http.Request) {
	b.find(w, r, func(i int) {
		b.tasks[i].Completed = !b.tasks[i].Completed
		ok(w, http.StatusOK, map[string]any{"task": b.tasks[i]})
	})
}

func testConfig(url, storePath string) *config.Config {
	return &config.Config{
		APIBaseURL:     url,
		RequestTimeout: time.Second,
		StorePath:      storePath,
		LogLevel:       "error",
		LogFormat:      "text",
	}
}

// newTestApp builds an App over b with a fresh store; the caller starts it.
func newTestApp(t *testing.T, cfg *config.Config, input string, opts ...AppOption) (*App, *strings.Builder) {
	t.Helper()
	out := &strings.Builder{}
	opts = append([]AppOption{WithIO(strings.NewReader(input), out)}, opts...)
	a, err := NewApp(context.Background(), cfg, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, out
}

func storePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "state", "taskdesk.db")
}

// stubPassword makes every password prompt answer pw.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
