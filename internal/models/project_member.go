package models

import (
	"time"
)

// ProjectMember represents a user's membership and role within a project.
// The composite unique index serializes concurrent add/join calls: the
// second writer for the same (user, project) pair hits the constraint.
type ProjectMember struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProjectID uint       `gorm:"uniqueIndex:idx_member_user_project;not null" json:"project_id"`
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint       `gorm:"uniqueIndex:idx_member_user_project;not null" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      MemberRole `gorm:"size:20;default:MEMBER" json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (ProjectMember) TableName() string { return "project_members" }
