package models

import "time"

// Session is an opaque token bound to one user. A session is valid only
// while IsActive is true and ExpiresAt is in the future; validity is
// re-checked against storage on every request.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
