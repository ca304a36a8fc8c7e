package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// RoleFaculty identifies instructors that own projects.
	RoleFaculty = "faculty"
	// RoleStudent identifies learners that belong to project groups.
	RoleStudent = "student"
)

// User represents a faculty member or student account.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         string    `gorm:"size:16;not null;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID and normalises the email address.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// IsFaculty reports whether the account belongs to an instructor.
func (u User) IsFaculty() bool {
	return u.Role == RoleFaculty
}
