package client

import (
	"context"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
)

// AuthResult is what the backend returns on a successful login or signup.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

// AuthAPI covers the authentication endpoints.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
}

// TaskAPI covers the task endpoints. All of them require a stored token.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ToggleTask(ctx context.Context, id string) (*models.Task, error)
}

// Client is the full backend surface.
type Client interface {
	AuthAPI
	TaskAPI
	OnUnauthorized(h UnauthorizedHandler)
}

// UnauthorizedHandler is notified after a 401 response, once the stored
// token has already been removed.
type UnauthorizedHandler func(ctx context.Context)

// TokenStore is the slot the transport reads the bearer token from.
type TokenStore interface {
	Get(ctx context.Context) string
	Remove(ctx context.Context) error
}
