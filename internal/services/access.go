package services

import (
	"github.com/haidang/taskhive/backend/internal/models"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

// AccessService evaluates project access predicates. Both predicates are
// side-effect-free and query the store on every call so role changes take
// effect on the next request; nothing is cached.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// editRoles are the project roles that grant edit permission.
var editRoles = []models.MemberRole{models.RoleOwner, models.RoleAdmin}

// CanView reports whether the user owns the project or holds any
// membership in it. A project id with no matching row under this user's
// visibility yields false, identical to a project that does not exist.
func (s *AccessService) CanView(userID, projectID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Project{}).
		Where("projects.id = ?", projectID).
		Where("projects.owner_id = ? OR EXISTS (SELECT 1 FROM project_members WHERE project_members.project_id = projects.id AND project_members.user_id = ?)",
			userID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanEdit reports whether the user owns the project or holds an OWNER or
// ADMIN membership in it.
func (s *AccessService) CanEdit(userID, projectID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Project{}).
		Where("projects.id = ?", projectID).
		Where("projects.owner_id = ? OR EXISTS (SELECT 1 FROM project_members WHERE project_members.project_id = projects.id AND project_members.user_id = ? AND project_members.role IN ?)",
			userID, userID, editRoles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RequireView returns an access-denied error unless CanView holds. The
// error message never distinguishes a missing project from a forbidden one.
func (s *AccessService) RequireView(userID, projectID uint) error {
	ok, err := s.CanView(userID, projectID)
	if err != nil {
		return response.NewServerError("failed to check project access")
	}
	if !ok {
		return response.NewForbidden("access denied")
	}
	return nil
}

// RequireEdit returns an access-denied error unless CanEdit holds.
func (s *AccessService) RequireEdit(userID, projectID uint) error {
	ok, err := s.CanEdit(userID, projectID)
	if err != nil {
		return response.NewServerError("failed to check project access")
	}
	if !ok {
		return response.NewForbidden("access denied")
	}
	return nil
}

// editableProjectIDs returns a subquery selecting the ids of every project
// the user may edit (owner, or OWNER/ADMIN member).
func (s *AccessService) editableProjectIDs(userID uint) *gorm.DB {
	return s.db.Model(&models.Project{}).
		Select("projects.id").
		Where("projects.owner_id = ? OR EXISTS (SELECT 1 FROM project_members WHERE project_members.project_id = projects.id AND project_members.user_id = ? AND project_members.role IN ?)",
			userID, userID, editRoles)
}

// reachableProjectIDs returns a subquery selecting the ids of every project
// the user can see (owner or member of any role).
func (s *AccessService) reachableProjectIDs(userID uint) *gorm.DB {
	return s.db.Model(&models.Project{}).
		Select("projects.id").
		Where("projects.owner_id = ? OR EXISTS (SELECT 1 FROM project_members WHERE project_members.project_id = projects.id AND project_members.user_id = ?)",
			userID, userID)
}
