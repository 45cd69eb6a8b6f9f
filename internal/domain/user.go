package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for registered accounts. ID is immutable once
// created; email uniqueness is enforced by the credential store.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Bio          string
	Location     string
	JobTitle     string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
