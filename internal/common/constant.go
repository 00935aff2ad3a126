// Package common contains shared constants and sentinel errors used across
// taskdesk components.
package common

// AuthorizationHeaderName is the HTTP header that carries the bearer token
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the raw token in the Authorization header value.
const BearerPrefix = "Bearer "

// RequestIDHeaderName tags every outbound request with a correlation id.
const RequestIDHeaderName = "X-Request-ID"

// TokenStorageKey names the single persistent slot that holds the token.
const TokenStorageKey = "jwt_token"

// View paths used as navigation targets.
const (
	LoginPath     = "/login"
	SignupPath    = "/signup"
	DashboardPath = "/dashboard"
	TodosPath     = "/dashboard/todos"
)
