package services

import (
	"errors"
	"time"

	"github.com/haidang/taskhive/backend/internal/models"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db     *gorm.DB
	access *AccessService
}

func NewProjectService(db *gorm.DB, access *AccessService) *ProjectService {
	return &ProjectService{db: db, access: access}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

type ProjectSummary struct {
	models.Project
	TaskCount   int64 `json:"task_count"`
	MemberCount int64 `json:"member_count"`
}

type ProjectDetail struct {
	models.Project
	Members []models.ProjectMember `json:"members"`
}

type ProjectStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	OnHold    int64 `json:"on_hold"`
	Archived  int64 `json:"archived"`
}

// memberOrder sorts memberships owner-first, then admins, newest joins
// first within each role tier.
const memberOrder = "CASE role WHEN 'OWNER' THEN 0 WHEN 'ADMIN' THEN 1 ELSE 2 END, joined_at DESC"

// Create inserts the project and its OWNER membership in one transaction.
// A project without an OWNER row is never visible to readers.
func (s *ProjectService) Create(userID uint, req *CreateProjectRequest) (*models.Project, error) {
	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectActive,
		OwnerID:     userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      models.RoleOwner,
			JoinedAt:  time.Now(),
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, response.NewServerError("failed to create project")
	}

	return &project, nil
}

// Get returns a project with its owner and ordered member list. Callers
// without view access get the same error whether the project exists or not.
func (s *ProjectService) Get(userID, projectID uint) (*ProjectDetail, error) {
	if err := s.access.RequireView(userID, projectID); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.Preload("Owner").First(&project, projectID).Error; err != nil {
		return nil, response.NewServerError("failed to load project")
	}

	var members []models.ProjectMember
	if err := s.db.Preload("User").
		Where("project_id = ?", projectID).
		Order(memberOrder).
		Find(&members).Error; err != nil {
		return nil, response.NewServerError("failed to load project members")
	}

	return &ProjectDetail{Project: project, Members: members}, nil
}

// Update applies partial changes to name, description and status.
func (s *ProjectService) Update(userID, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	if err := s.access.RequireEdit(userID, projectID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != "" {
		status := models.ProjectStatus(req.Status)
		if !status.Valid() {
			return nil, response.NewBadRequest("invalid project status")
		}
		updates["status"] = status
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewServerError("failed to load project")
	}
	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, response.NewServerError("failed to update project")
		}
	}
	return &project, nil
}

// Archive stamps archived_at. Archiving an already archived project keeps
// the original timestamp.
func (s *ProjectService) Archive(userID, projectID uint) (*models.Project, error) {
	if err := s.access.RequireEdit(userID, projectID); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewServerError("failed to load project")
	}
	if project.ArchivedAt == nil {
		now := time.Now()
		if err := s.db.Model(&project).Update("archived_at", &now).Error; err != nil {
			return nil, response.NewServerError("failed to archive project")
		}
	}
	return &project, nil
}

// Restore clears archived_at. Restoring an active project is a no-op.
func (s *ProjectService) Restore(userID, projectID uint) (*models.Project, error) {
	if err := s.access.RequireEdit(userID, projectID); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewServerError("failed to load project")
	}
	if project.ArchivedAt != nil {
		if err := s.db.Model(&project).Update("archived_at", nil).Error; err != nil {
			return nil, response.NewServerError("failed to restore project")
		}
		project.ArchivedAt = nil
	}
	return &project, nil
}

// Delete permanently removes the project and everything under it. Only the
// owner may delete; this is the one operation that tells a non-owner member
// the project exists, since they could already see it.
func (s *ProjectService) Delete(userID, projectID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("project not found")
		}
		return response.NewServerError("failed to load project")
	}
	if project.OwnerID != userID {
		return response.NewForbidden("only the project owner can delete the project")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectInvitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
	if err != nil {
		return response.NewServerError("failed to delete project")
	}
	return nil
}

// ListMine returns every non-archived project the user owns or belongs to,
// with task and member counts.
func (s *ProjectService) ListMine(userID uint) ([]ProjectSummary, error) {
	return s.list(userID, false)
}

// ListArchived returns the user's archived projects.
func (s *ProjectService) ListArchived(userID uint) ([]ProjectSummary, error) {
	return s.list(userID, true)
}

func (s *ProjectService) list(userID uint, archived bool) ([]ProjectSummary, error) {
	query := s.db.Model(&models.Project{}).
		Where("projects.id IN (?)", s.access.reachableProjectIDs(userID))
	if archived {
		query = query.Where("projects.archived_at IS NOT NULL")
	} else {
		query = query.Where("projects.archived_at IS NULL")
	}

	var projects []models.Project
	if err := query.Preload("Owner").Order("projects.updated_at DESC").Find(&projects).Error; err != nil {
		return nil, response.NewServerError("failed to list projects")
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		var taskCount, memberCount int64
		s.db.Model(&models.Task{}).Where("project_id = ?", p.ID).Count(&taskCount)
		s.db.Model(&models.ProjectMember{}).Where("project_id = ?", p.ID).Count(&memberCount)
		summaries = append(summaries, ProjectSummary{Project: p, TaskCount: taskCount, MemberCount: memberCount})
	}
	return summaries, nil
}

// ListJoinable returns up to 10 active projects the user could ask to join:
// not archived, not already theirs, and with no pending invitation for
// their email.
func (s *ProjectService) ListJoinable(userID uint, email string) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.Preload("Owner").
		Where("status = ?", models.ProjectActive).
		Where("archived_at IS NULL").
		Where("owner_id <> ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM project_members WHERE project_members.project_id = projects.id AND project_members.user_id = ?)", userID).
		Where("NOT EXISTS (SELECT 1 FROM project_invitations WHERE project_invitations.project_id = projects.id AND project_invitations.receiver_email = ? AND project_invitations.status = ?)",
			email, models.InvitationPending).
		Order("created_at DESC").
		Limit(10).
		Find(&projects).Error
	if err != nil {
		return nil, response.NewServerError("failed to list joinable projects")
	}
	return projects, nil
}

// Stats aggregates the user's project counts by status. Archived projects
// count only toward the archived bucket.
func (s *ProjectService) Stats(userID uint) (*ProjectStats, error) {
	var projects []models.Project
	if err := s.db.Where("id IN (?)", s.access.reachableProjectIDs(userID)).Find(&projects).Error; err != nil {
		return nil, response.NewServerError("failed to load project stats")
	}

	stats := &ProjectStats{Total: int64(len(projects))}
	for _, p := range projects {
		if p.Archived() {
			stats.Archived++
			continue
		}
		switch p.Status {
		case models.ProjectActive:
			stats.Active++
		case models.ProjectCompleted:
			stats.Completed++
		case models.ProjectOnHold:
			stats.OnHold++
		}
	}
	return stats, nil
}
