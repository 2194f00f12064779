package models

import "time"

// IDPStatus is the lifecycle state of a development plan
type IDPStatus string

const (
	IDPStatusActive    IDPStatus = "active"
	IDPStatusCompleted IDPStatus = "completed"
	IDPStatusArchived  IDPStatus = "archived"
)

// IsValid reports whether the status is one of the known values
func (s IDPStatus) IsValid() bool {
	return s == IDPStatusActive || s == IDPStatusCompleted || s == IDPStatusArchived
}

// IDP pairs one mentor with one mentee. A given pair has at most one
// active plan at a time.
type IDP struct {
	ID        int64     `json:"id"`
	MentorID  int64     `json:"mentor_id"`
	MenteeID  int64     `json:"mentee_id"`
	Status    IDPStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	Mentor *User  `json:"mentor,omitempty"`
	Mentee *User  `json:"mentee,omitempty"`
	Tasks  []Task `json:"tasks"`
}

// CreateIDPRequest creates a plan for a mentee identified by email.
// The mentee account is looked up or created as part of the operation.
type CreateIDPRequest struct {
	MenteeFullName string `json:"mentee_full_name" binding:"required,max=255"`
	MenteeEmail    string `json:"mentee_email" binding:"required,email,max=255"`
	MenteePosition string `json:"mentee_position" binding:"omitempty,max=255"`
	MenteeGrade    string `json:"mentee_grade" binding:"omitempty,max=64"`
}
