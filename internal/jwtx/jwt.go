// Package jwtx reads the claims of compact JWTs without verifying them.
//
// The client never holds the signing key, so nothing here checks a
// signature: the backend does that on every request. The helpers only look
// at the payload segment to learn who the token belongs to and when it
// stops being useful. All functions are fail-closed: a token that cannot be
// read is reported as expired.
package jwtx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiryWindow is how close to its exp a token must be for
// IsAboutToExpire to report it.
const DefaultExpiryWindow = 5 * time.Minute

// now is the wall clock; tests pin it.
var now = time.Now

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Claims is the decoded payload. Fields are loosely typed; use the accessors
// rather than indexing the map directly.
type Claims struct {
	jwt.MapClaims
}

// Decode splits the token into its three segments and parses the middle one
// as a JSON object. It reports false on any malformed input.
func Decode(token string) (Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, false
	}

	raw, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, false
	}

	var mc jwt.MapClaims
	if err := json.Unmarshal(raw, &mc); err != nil || mc == nil {
		return Claims{}, false
	}
	return Claims{MapClaims: mc}, true
}

// Expiration returns the exp claim. It reports false when the claim is
// absent or not a number.
func (c Claims) Expiration() (time.Time, bool) {
	if c.MapClaims == nil {
		return time.Time{}, false
	}
	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil || exp.Unix() == 0 {
		return time.Time{}, false
	}
	return exp.Time, true
}

// String returns a claim as a string. Numeric claims are formatted without
// a fractional part when they have none.
func (c Claims) String(key string) (string, bool) {
	v, ok := c.MapClaims[key]
	if !ok || v == nil {
		return "", false
	}
	switch value := v.(type) {
	case string:
		return value, value != ""
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case json.Number:
		return value.String(), true
	case bool:
		return strconv.FormatBool(value), true
	default:
		return fmt.Sprint(value), true
	}
}

// Object returns a nested JSON object claim.
func (c Claims) Object(key string) (map[string]any, bool) {
	v, ok := c.MapClaims[key].(map[string]any)
	return v, ok
}

// Subject returns the user id carried by the token: userId when present,
// otherwise sub.
func (c Claims) Subject() (string, bool) {
	if id, ok := c.String("userId"); ok {
		return id, true
	}
	return c.String("sub")
}

// User returns the nested user object claim. It reports false when the
// claim is missing or has no id.
func (c Claims) User() (*models.User, bool) {
	obj, ok := c.Object("user")
	if !ok {
		return nil, false
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
		return nil, false
	}
	return &u, true
}

// Expiration returns the exp claim of token.
func Expiration(token string) (time.Time, bool) {
	claims, ok := Decode(token)
	if !ok {
		return time.Time{}, false
	}
	return claims.Expiration()
}

// IsExpired reports whether the token's exp lies in the past. Unreadable
// tokens and tokens without exp are expired.
func IsExpired(token string) bool {
	return IsExpiredAt(token, now())
}

// IsExpiredAt is IsExpired against an explicit clock reading.
func IsExpiredAt(token string, at time.Time) bool {
	exp, ok := Expiration(token)
	if !ok {
		return true
	}
	return exp.Before(truncate(at))
}

// IsAboutToExpire reports whether fewer than window remain before exp.
// Unreadable tokens and tokens without exp are about to expire.
func IsAboutToExpire(token string, window time.Duration) bool {
	return IsAboutToExpireAt(token, window, now())
}

// IsAboutToExpireAt is IsAboutToExpire against an explicit clock reading.
func IsAboutToExpireAt(token string, window time.Duration, at time.Time) bool {
	exp, ok := Expiration(token)
	if !ok {
		return true
	}
	return exp.Sub(truncate(at)) < window
}

// truncate drops sub-second precision: exp is whole seconds since epoch.
func truncate(t time.Time) time.Time {
	return time.Unix(t.Unix(), 0)
}
