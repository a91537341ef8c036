package models

import (
	"time"
)

// ProjectInvitation invites an email address into a project with a role.
// One row per (receiver_email, project_id): re-inviting the same address
// updates the existing row instead of creating a duplicate.
type ProjectInvitation struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Token         string           `gorm:"uniqueIndex;size:64;not null" json:"token"` // uuid used by the accept link
	ReceiverEmail string           `gorm:"uniqueIndex:idx_invite_email_project;size:255;not null" json:"receiver_email"`
	ProjectID     uint             `gorm:"uniqueIndex:idx_invite_email_project;not null" json:"project_id"`
	Project       *Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	SenderID      uint             `gorm:"not null" json:"sender_id"`
	Sender        *User            `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Role          MemberRole       `gorm:"size:20;not null" json:"role"` // ADMIN or MEMBER, never OWNER
	Status        InvitationStatus `gorm:"size:20;default:PENDING" json:"status"`
	SentAt        time.Time        `json:"sent_at"`
	ExpiresAt     time.Time        `json:"expires_at"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (ProjectInvitation) TableName() string { return "project_invitations" }

// ExpiredAt reports whether the invitation has passed its expiry at the
// given instant. Expiry is derived, never read from Status.
func (i *ProjectInvitation) ExpiredAt(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
