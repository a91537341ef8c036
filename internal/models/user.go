package models

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	Email      string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password   string     `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role       GlobalRole `gorm:"size:20;default:MEMBER" json:"role"`
	LastActive time.Time  `json:"last_active"` // touched on every successful login
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }
