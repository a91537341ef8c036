package services

import (
	"errors"
	"time"

	"github.com/haidang/taskhive/backend/internal/models"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type MemberService struct {
	db     *gorm.DB
	access *AccessService
}

func NewMemberService(db *gorm.DB, access *AccessService) *MemberService {
	return &MemberService{db: db, access: access}
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type TeamMember struct {
	models.User
	JoinedAt    time.Time `json:"joined_at"`
	SharedCount int64     `json:"shared_count"`
	HighestRole string    `json:"highest_role"`
}

type TeamStats struct {
	TotalMembers       int64 `json:"total_members"`
	ActiveMembers      int64 `json:"active_members"`
	Admins             int64 `json:"admins"`
	PendingInvitations int64 `json:"pending_invitations"`
}

// Add puts a user directly into a project with ADMIN or MEMBER role.
// OWNER is never assignable; the single OWNER row is created with the
// project and never by this path.
func (s *MemberService) Add(actorID, projectID uint, req *AddMemberRequest) (*models.ProjectMember, error) {
	role := models.MemberRole(req.Role)
	if !role.Assignable() {
		return nil, response.NewBadRequest("role must be ADMIN or MEMBER")
	}
	if err := s.access.RequireEdit(actorID, projectID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, response.NewServerError("failed to load user")
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      role,
		JoinedAt:  time.Now(),
	}
	if err := s.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("user is already a member of this project")
		}
		return nil, response.NewServerError("failed to add member")
	}
	member.User = &user
	return &member, nil
}

// UpdateRole changes a member's role within one project. Actors cannot
// change their own role, and the OWNER row is immutable.
func (s *MemberService) UpdateRole(actorID, projectID, targetUserID uint, req *UpdateMemberRoleRequest) (*models.ProjectMember, error) {
	role := models.MemberRole(req.Role)
	if !role.Assignable() {
		return nil, response.NewBadRequest("role must be ADMIN or MEMBER")
	}
	if actorID == targetUserID {
		return nil, response.NewForbidden("cannot change your own role")
	}
	if err := s.access.RequireEdit(actorID, projectID); err != nil {
		return nil, err
	}

	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, targetUserID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, response.NewServerError("failed to load member")
	}
	if member.Role == models.RoleOwner {
		return nil, response.NewForbidden("cannot change the project owner's role")
	}

	if err := s.db.Model(&member).Update("role", role).Error; err != nil {
		return nil, response.NewServerError("failed to update member role")
	}
	member.Role = role
	return &member, nil
}

// Remove drops a membership. It always requires edit rights, including
// when the actor targets their own row; leaving without edit rights goes
// through Leave. The OWNER row cannot be removed; deleting the project is
// the only way to end ownership.
func (s *MemberService) Remove(actorID, projectID, targetUserID uint) error {
	if err := s.access.RequireEdit(actorID, projectID); err != nil {
		return err
	}

	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, targetUserID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("member not found")
		}
		return response.NewServerError("failed to load member")
	}
	if member.Role == models.RoleOwner {
		return response.NewForbidden("cannot remove project owner")
	}

	if err := s.db.Delete(&member).Error; err != nil {
		return response.NewServerError("failed to remove member")
	}
	return nil
}

// Leave deletes the caller's own membership row. No edit rights are
// needed, holding the row is enough. The OWNER cannot leave their own
// project.
func (s *MemberService) Leave(userID, projectID uint) error {
	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("member not found")
		}
		return response.NewServerError("failed to load member")
	}
	if member.Role == models.RoleOwner {
		return response.NewForbidden("cannot remove project owner")
	}

	if err := s.db.Delete(&member).Error; err != nil {
		return response.NewServerError("failed to leave project")
	}
	return nil
}

// Join adds the caller to a visible, joinable project as MEMBER.
func (s *MemberService) Join(userID, projectID uint) (*models.ProjectMember, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewServerError("failed to load project")
	}
	if project.Archived() || project.Status != models.ProjectActive {
		return nil, response.NewConflict("project is not open for joining")
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      models.RoleMember,
		JoinedAt:  time.Now(),
	}
	if err := s.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("user is already a member of this project")
		}
		return nil, response.NewServerError("failed to join project")
	}
	return &member, nil
}

// UpdateRoleAcrossSharedProjects sets the target's role in every project
// the actor can edit and the target belongs to. OWNER rows are skipped, not
// rejected, so the sweep is safe over mixed memberships.
func (s *MemberService) UpdateRoleAcrossSharedProjects(actorID, targetUserID uint, req *UpdateMemberRoleRequest) (int64, error) {
	role := models.MemberRole(req.Role)
	if !role.Assignable() {
		return 0, response.NewBadRequest("role must be ADMIN or MEMBER")
	}
	if actorID == targetUserID {
		return 0, response.NewForbidden("cannot change your own role")
	}

	result := s.db.Model(&models.ProjectMember{}).
		Where("user_id = ?", targetUserID).
		Where("role <> ?", models.RoleOwner).
		Where("project_id IN (?)", s.access.editableProjectIDs(actorID)).
		Update("role", role)
	if result.Error != nil {
		return 0, response.NewServerError("failed to update member roles")
	}
	return result.RowsAffected, nil
}

// RemoveAcrossSharedProjects removes the target from every project the
// actor can edit, skipping OWNER rows.
func (s *MemberService) RemoveAcrossSharedProjects(actorID, targetUserID uint) (int64, error) {
	if actorID == targetUserID {
		return 0, response.NewForbidden("cannot remove yourself from your own team")
	}

	result := s.db.
		Where("user_id = ?", targetUserID).
		Where("role <> ?", models.RoleOwner).
		Where("project_id IN (?)", s.access.editableProjectIDs(actorID)).
		Delete(&models.ProjectMember{})
	if result.Error != nil {
		return 0, response.NewServerError("failed to remove member")
	}
	return result.RowsAffected, nil
}

// ListTeam returns every distinct user sharing at least one project with
// the caller, with their earliest join date and highest shared role.
func (s *MemberService) ListTeam(userID uint) ([]TeamMember, error) {
	var memberships []models.ProjectMember
	err := s.db.Preload("User").
		Where("project_id IN (?)", s.access.reachableProjectIDs(userID)).
		Find(&memberships).Error
	if err != nil {
		return nil, response.NewServerError("failed to load team")
	}

	byUser := make(map[uint]*TeamMember)
	order := make([]uint, 0)
	for _, m := range memberships {
		if m.UserID == userID || m.User == nil {
			continue
		}
		tm, ok := byUser[m.UserID]
		if !ok {
			tm = &TeamMember{User: *m.User, JoinedAt: m.JoinedAt, HighestRole: string(m.Role)}
			byUser[m.UserID] = tm
			order = append(order, m.UserID)
		}
		tm.SharedCount++
		if roleRank(m.Role) < roleRank(models.MemberRole(tm.HighestRole)) {
			tm.HighestRole = string(m.Role)
		}
		if m.JoinedAt.Before(tm.JoinedAt) {
			tm.JoinedAt = m.JoinedAt
		}
	}

	team := make([]TeamMember, 0, len(order))
	for _, id := range order {
		team = append(team, *byUser[id])
	}
	return team, nil
}

// TeamStats summarizes the caller's team across all reachable projects.
// A member is active if they logged in within the last 30 days.
func (s *MemberService) TeamStats(userID uint) (*TeamStats, error) {
	team, err := s.ListTeam(userID)
	if err != nil {
		return nil, err
	}

	stats := &TeamStats{TotalMembers: int64(len(team))}
	cutoff := time.Now().AddDate(0, 0, -30)
	for _, tm := range team {
		if tm.LastActive.After(cutoff) {
			stats.ActiveMembers++
		}
		if tm.HighestRole == string(models.RoleOwner) || tm.HighestRole == string(models.RoleAdmin) {
			stats.Admins++
		}
	}

	if err := s.db.Model(&models.ProjectInvitation{}).
		Where("project_id IN (?)", s.access.editableProjectIDs(userID)).
		Where("status = ?", models.InvitationPending).
		Count(&stats.PendingInvitations).Error; err != nil {
		return nil, response.NewServerError("failed to count pending invitations")
	}
	return stats, nil
}

func roleRank(r models.MemberRole) int {
	switch r {
	case models.RoleOwner:
		return 0
	case models.RoleAdmin:
		return 1
	default:
		return 2
	}
}
