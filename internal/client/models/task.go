package models

import "strings"

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Task is a todo item owned by a user.
type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   bool    `json:"completed"`
	UserID      string  `json:"user_id,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// Details returns the description or an empty string.
func (t Task) Details() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Completed   bool    `json:"completed"`
}

// Validate trims the title and checks field limits.
func (in *TaskInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	return validateStruct(in)
}

// TaskUpdate is a partial update; nil fields are left untouched by the backend.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (u *TaskUpdate) Validate() error {
	if u.Title != nil {
		trimmed := strings.TrimSpace(*u.Title)
		u.Title = &trimmed
		if trimmed == "" {
			return &ValidationError{Fields: map[string]string{"title": "Title is required"}}
		}
	}
	return validateStruct(u)
}

// Empty reports whether the update carries no changes.
func (u *TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil
}
