package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID               uuid.UUID  `json:"id"`
	ClerkID          string     `json:"clerkId"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             Role       `json:"role"`
	SchoolID         *uuid.UUID `json:"schoolId,omitempty"`
	Points           int        `json:"points"`
	CurrentStreak    int        `json:"currentStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type CreateUserRequest struct {
	ClerkID string `json:"clerkId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	SchoolID string `json:"schoolId"`
}

// Summary is the slice of the user returned alongside a review result;
// it carries only the fields the review mutates.
type Summary struct {
	Points           int        `json:"points"`
	CurrentStreak    int        `json:"currentStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
}
