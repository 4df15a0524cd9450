package models

import "time"

// Closed set of account roles. Assigned once at signup, carried inside every
// issued token; the gate never re-reads the role from this table.
const (
	RoleStudent  = "student"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

// User is the shared account record for students, lecturers and admins.
type User struct {
	UserID         string `gorm:"primaryKey;size:36"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FirstName      string    `gorm:"size:50;not null"`
	LastName       string    `gorm:"size:50;not null"`
	Email          string    `gorm:"size:100;not null;uniqueIndex"`
	HashedPassword []byte    `gorm:"not null"`
	DateOfBirth    time.Time `gorm:"not null"`
	RoleName       string    `gorm:"size:20;not null"`
	IsVerified     bool      `gorm:"default:false;not null"`
	IsActive       bool      `gorm:"default:true;not null"`
}
