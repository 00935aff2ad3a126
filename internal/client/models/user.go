// Package models defines client-side data models used by the taskdesk CLI.
package models

// User is the account the session belongs to. Timestamps are kept as the
// backend renders them because they are not guaranteed to carry a zone.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// UnknownUserID is used when a token carries neither a user object nor an id.
const UnknownUserID = "unknown"

// DisplayName returns the most readable identifier of the user.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks the login form without touching the network.
func (c *Credentials) Validate() error {
	return validateStruct(c)
}

// Registration is the signup form.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
}

func (r *Registration) Validate() error {
	return validateStruct(r)
}
