package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/haidang/taskhive/backend/internal/models"
	"github.com/haidang/taskhive/backend/pkg/logger"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvitationService struct {
	db         *gorm.DB
	access     *AccessService
	expireDays int
}

func NewInvitationService(db *gorm.DB, access *AccessService, expireDays int) *InvitationService {
	if expireDays <= 0 {
		expireDays = 7
	}
	return &InvitationService{db: db, access: access, expireDays: expireDays}
}

type InviteRequest struct {
	ReceiverEmail string `json:"receiver_email" binding:"required,email"`
	Role          string `json:"role" binding:"required"`
	// ProjectIDs narrows the invitation to a subset of the sender's
	// editable projects. Empty means every project they can edit.
	ProjectIDs []uint `json:"project_ids"`
}

type InviteResult struct {
	Invited       []models.ProjectInvitation `json:"invited"`
	AlreadyMember []uint                     `json:"already_member"`
	AlreadySent   []uint                     `json:"already_sent"`
}

type InvitationView struct {
	models.ProjectInvitation
	IsExpired bool `json:"is_expired"`
}

// Invite sends (or refreshes) an invitation for every project the sender
// can edit, optionally narrowed by req.ProjectIDs. Projects where the
// address already belongs or already has a pending invitation are reported
// back rather than failing the whole batch. Re-inviting after cancel or
// expiry reuses the row with a fresh token and expiry.
func (s *InvitationService) Invite(senderID uint, req *InviteRequest) (*InviteResult, error) {
	role := models.MemberRole(req.Role)
	if !role.Assignable() {
		return nil, response.NewBadRequest("role must be ADMIN or MEMBER")
	}

	var sender models.User
	if err := s.db.First(&sender, senderID).Error; err != nil {
		return nil, response.NewServerError("failed to load sender")
	}

	scope := s.access.editableProjectIDs(senderID)
	if len(req.ProjectIDs) > 0 {
		scope = scope.Where("projects.id IN ?", req.ProjectIDs)
	}
	var editable []uint
	if err := scope.Pluck("projects.id", &editable).Error; err != nil {
		return nil, response.NewServerError("failed to check project access")
	}
	if len(editable) == 0 {
		return nil, response.NewForbidden("access denied")
	}

	now := time.Now()
	expiresAt := now.AddDate(0, 0, s.expireDays)
	result := &InviteResult{}

	queue := GetMailQueue()

	for _, projectID := range editable {
		var memberCount int64
		if err := s.db.Model(&models.ProjectMember{}).
			Joins("JOIN users ON users.id = project_members.user_id").
			Where("project_members.project_id = ? AND users.email = ?", projectID, req.ReceiverEmail).
			Count(&memberCount).Error; err != nil {
			return nil, response.NewServerError("failed to check existing membership")
		}
		if memberCount > 0 {
			result.AlreadyMember = append(result.AlreadyMember, projectID)
			continue
		}

		var pendingCount int64
		if err := s.db.Model(&models.ProjectInvitation{}).
			Where("project_id = ? AND receiver_email = ? AND status = ? AND expires_at > ?",
				projectID, req.ReceiverEmail, models.InvitationPending, now).
			Count(&pendingCount).Error; err != nil {
			return nil, response.NewServerError("failed to check pending invitations")
		}
		if pendingCount > 0 {
			result.AlreadySent = append(result.AlreadySent, projectID)
			continue
		}

		invitation := models.ProjectInvitation{
			Token:         uuid.NewString(),
			ReceiverEmail: req.ReceiverEmail,
			ProjectID:     projectID,
			SenderID:      senderID,
			Role:          role,
			Status:        models.InvitationPending,
			SentAt:        now,
			ExpiresAt:     expiresAt,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "receiver_email"}, {Name: "project_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"token", "sender_id", "role", "status", "sent_at", "expires_at", "updated_at",
			}),
		}).Create(&invitation).Error
		if err != nil {
			return nil, response.NewServerError("failed to create invitation")
		}

		// The upsert path does not report the surviving row's id.
		var saved models.ProjectInvitation
		if err := s.db.Where("receiver_email = ? AND project_id = ?", req.ReceiverEmail, projectID).
			First(&saved).Error; err != nil {
			return nil, response.NewServerError("failed to load invitation")
		}
		result.Invited = append(result.Invited, saved)

		if queue == nil {
			continue
		}
		var project models.Project
		s.db.Select("name").First(&project, projectID)
		if err := queue.Enqueue(&InvitationMail{
			InvitationID:  saved.ID,
			ReceiverEmail: saved.ReceiverEmail,
			ProjectName:   project.Name,
			SenderName:    sender.Name,
			Role:          string(saved.Role),
			Token:         saved.Token,
			ExpiresInDays: s.expireDays,
		}); err != nil {
			logger.Warnf("failed to enqueue invitation mail for %s: %v", saved.ReceiverEmail, err)
		}
	}

	return result, nil
}

// findEditable fetches an invitation only if it sits in a project the actor
// can edit. One error covers both a missing id and an out-of-reach one.
func (s *InvitationService) findEditable(actorID, invitationID uint) (*models.ProjectInvitation, error) {
	var invitation models.ProjectInvitation
	err := s.db.
		Where("id = ?", invitationID).
		Where("project_id IN (?)", s.access.editableProjectIDs(actorID)).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewForbidden("invitation not found or access denied")
		}
		return nil, response.NewServerError("failed to load invitation")
	}
	return &invitation, nil
}

// Cancel marks a pending invitation CANCELLED. Its token stops working
// immediately; the row stays so a later re-invite can reuse it.
func (s *InvitationService) Cancel(actorID, invitationID uint) error {
	invitation, err := s.findEditable(actorID, invitationID)
	if err != nil {
		return err
	}
	if invitation.Status != models.InvitationPending {
		return response.NewConflict("only pending invitations can be cancelled")
	}

	if err := s.db.Model(invitation).Update("status", models.InvitationCancelled).Error; err != nil {
		return response.NewServerError("failed to cancel invitation")
	}
	return nil
}

// Resend refreshes a pending invitation with a new token, sent_at and
// expiry, and queues another mail. Resending un-expires: a row the sweep
// already marked EXPIRED flips back to PENDING with a fresh window.
func (s *InvitationService) Resend(actorID, invitationID uint) (*models.ProjectInvitation, error) {
	invitation, err := s.findEditable(actorID, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.Status != models.InvitationPending && invitation.Status != models.InvitationExpired {
		return nil, response.NewConflict("only pending invitations can be resent")
	}

	now := time.Now()
	token := uuid.NewString()
	updates := map[string]interface{}{
		"token":      token,
		"status":     models.InvitationPending,
		"sent_at":    now,
		"expires_at": now.AddDate(0, 0, s.expireDays),
	}
	if err := s.db.Model(invitation).Updates(updates).Error; err != nil {
		return nil, response.NewServerError("failed to resend invitation")
	}
	invitation.Token = token
	invitation.Status = models.InvitationPending
	invitation.SentAt = now
	invitation.ExpiresAt = now.AddDate(0, 0, s.expireDays)

	queue := GetMailQueue()
	if queue == nil {
		return invitation, nil
	}
	var sender models.User
	s.db.Select("name").First(&sender, actorID)
	var project models.Project
	s.db.Select("name").First(&project, invitation.ProjectID)
	if err := queue.Enqueue(&InvitationMail{
		InvitationID:  invitation.ID,
		ReceiverEmail: invitation.ReceiverEmail,
		ProjectName:   project.Name,
		SenderName:    sender.Name,
		Role:          string(invitation.Role),
		Token:         invitation.Token,
		ExpiresInDays: s.expireDays,
		Resend:        true,
	}); err != nil {
		logger.Warnf("failed to enqueue invitation mail for %s: %v", invitation.ReceiverEmail, err)
	}

	return invitation, nil
}

// Accept redeems an invitation token for the logged-in user: the
// invitation must be addressed to their email, still pending and not past
// its expiry. Membership creation and the status flip commit together.
func (s *InvitationService) Accept(userID uint, token string) (*models.ProjectMember, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, response.NewServerError("failed to load user")
	}

	var invitation models.ProjectInvitation
	if err := s.db.Where("token = ?", token).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("invitation not found")
		}
		return nil, response.NewServerError("failed to load invitation")
	}

	if invitation.ReceiverEmail != user.Email {
		return nil, response.NewForbidden("this invitation was sent to a different email address")
	}
	if invitation.Status != models.InvitationPending {
		return nil, response.NewConflict("invitation is no longer pending")
	}
	if invitation.ExpiredAt(time.Now()) {
		return nil, response.NewConflict("invitation has expired")
	}

	member := models.ProjectMember{
		ProjectID: invitation.ProjectID,
		UserID:    userID,
		Role:      invitation.Role,
		JoinedAt:  time.Now(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("status", models.InvitationAccepted).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("user is already a member of this project")
		}
		return nil, response.NewServerError("failed to accept invitation")
	}
	return &member, nil
}

// ListPending returns pending invitations across every project the actor
// can edit, newest first. Rows past their expiry are flagged, not mutated;
// stored status only changes through cancel, accept or the sweep.
func (s *InvitationService) ListPending(actorID uint) ([]InvitationView, error) {
	var invitations []models.ProjectInvitation
	err := s.db.Preload("Project").Preload("Sender").
		Where("project_id IN (?)", s.access.editableProjectIDs(actorID)).
		Where("status = ?", models.InvitationPending).
		Order("sent_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, response.NewServerError("failed to list invitations")
	}

	now := time.Now()
	views := make([]InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		views = append(views, InvitationView{
			ProjectInvitation: inv,
			IsExpired:         inv.ExpiredAt(now),
		})
	}
	return views, nil
}

// ListForEmail returns the user's own pending, unexpired invitations so
// they can accept from inside the app without the mail link.
func (s *InvitationService) ListForEmail(email string) ([]models.ProjectInvitation, error) {
	var invitations []models.ProjectInvitation
	err := s.db.Preload("Project").Preload("Sender").
		Where("receiver_email = ?", email).
		Where("status = ?", models.InvitationPending).
		Where("expires_at > ?", time.Now()).
		Order("sent_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, response.NewServerError("failed to list invitations")
	}
	return invitations, nil
}

// ExpireSweep persists EXPIRED onto pending rows past their expiry. It is
// an optional background job; readers never depend on it because expiry is
// derived from expires_at on every check.
func (s *InvitationService) ExpireSweep() (int64, error) {
	result := s.db.Model(&models.ProjectInvitation{}).
		Where("status = ?", models.InvitationPending).
		Where("expires_at <= ?", time.Now()).
		Update("status", models.InvitationExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		logger.Infof("[Invitations] Marked %d invitations expired", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
