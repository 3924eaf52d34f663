package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

// User models an account in the system. Role is fixed at registration time;
// there is no promotion path.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	TaskIDs      []string  `json:"task_ids"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsValidRole reports whether role is one of the two known roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
