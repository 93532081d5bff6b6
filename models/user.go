package models

import "time"

// UserRole gates write access to tournament data. Viewers only read.
type UserRole string

const (
	RoleOrganizer UserRole = "organizer"
	RoleViewer    UserRole = "viewer"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Nickname     *string   `json:"nickname,omitempty" db:"nickname"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
