package models

import "time"

type UserRole string

const (
	RoleOwner UserRole = "owner"
	RoleCoach UserRole = "coach"
	RoleStaff UserRole = "staff"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleOwner, RoleCoach, RoleStaff:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id"`
	AcademyID    int       `json:"academy_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
