package models

import "time"

// UserRole discriminates mentor and mentee accounts
type UserRole string

const (
	RoleMentor UserRole = "mentor"
	RoleMentee UserRole = "mentee"
)

// IsValid reports whether the role is one of the known values
func (r UserRole) IsValid() bool {
	return r == RoleMentor || r == RoleMentee
}

// User is an account in the system. Mentors authenticate with
// email+password, mentees with an access code; the unused fields are nil.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash *string   `json:"-"`
	Role         UserRole  `json:"role"`
	AccessCode   *string   `json:"access_code,omitempty"`
	Position     *string   `json:"position,omitempty"`
	Grade        *string   `json:"grade,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest carries either mentor credentials (email+password) or a
// mentee access code. Exactly one form must be present.
type LoginRequest struct {
	Email      string `json:"email" binding:"omitempty,email,max=255"`
	Password   string `json:"password" binding:"omitempty,max=255"`
	AccessCode string `json:"access_code" binding:"omitempty,max=64"`
}

// RegisterRequest is the payload for mentor self-registration
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=255"`
	Position string `json:"position" binding:"omitempty,max=255"`
	Grade    string `json:"grade" binding:"omitempty,max=64"`
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

// UpdateProfileRequest is the payload for PATCH /users/me.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Position *string `json:"position" binding:"omitempty,max=255"`
	Grade    *string `json:"grade" binding:"omitempty,max=64"`
}
