package model

import "time"

// RefreshToken holds a stored refresh token. The token value itself is an
// opaque random string; it is never exposed in JSON responses, only via the
// http-only cookie.
type RefreshToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
