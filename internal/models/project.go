package models

import (
	"time"
)

// Project is the unit of collaboration. Every project has exactly one
// OWNER membership whose user_id equals OwnerID, created in the same
// transaction as the project itself.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:200;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"size:20;default:ACTIVE" json:"status"`
	OwnerID     uint          `gorm:"index;not null" json:"owner_id"` // immutable after creation
	Owner       *User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	ArchivedAt  *time.Time    `json:"archived_at"` // non-nil means archived
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// Archived reports whether the project is currently archived.
func (p *Project) Archived() bool { return p.ArchivedAt != nil }
