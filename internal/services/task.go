package services

import (
	"errors"

	"github.com/haidang/taskhive/backend/internal/models"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

// TaskService manages tasks and their comments. Every operation resolves
// access through the parent project; tasks carry no permissions of their
// own, so a role change on the project applies to its tasks at once.
type TaskService struct {
	db     *gorm.DB
	access *AccessService
}

func NewTaskService(db *gorm.DB, access *AccessService) *TaskService {
	return &TaskService{db: db, access: access}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	AssigneeID  *uint  `json:"assignee_id"`
}

type UpdateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *uint   `json:"assignee_id"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// findVisible loads a task only when the caller can view its project. The
// joint query keeps foreign task ids indistinguishable from missing ones.
func (s *TaskService) findVisible(userID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.
		Where("id = ?", taskID).
		Where("project_id IN (?)", s.access.reachableProjectIDs(userID)).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewForbidden("access denied")
		}
		return nil, response.NewServerError("failed to load task")
	}
	return &task, nil
}

// Create adds a task to a project the caller can view. Any member may
// create tasks; edit roles gate membership and project mutations only.
func (s *TaskService) Create(userID, projectID uint, req *CreateTaskRequest) (*models.Task, error) {
	if err := s.access.RequireView(userID, projectID); err != nil {
		return nil, err
	}

	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.TaskPriority(req.Priority)
		if !priority.Valid() {
			return nil, response.NewBadRequest("invalid task priority")
		}
	}
	if req.AssigneeID != nil {
		ok, err := s.access.CanView(*req.AssigneeID, projectID)
		if err != nil {
			return nil, response.NewServerError("failed to check assignee access")
		}
		if !ok {
			return nil, response.NewBadRequest("assignee is not a member of this project")
		}
	}

	task := models.Task{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskTodo,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, response.NewServerError("failed to create task")
	}
	return &task, nil
}

// List returns the project's tasks, optionally filtered by status.
func (s *TaskService) List(userID, projectID uint, status string) ([]models.Task, error) {
	if err := s.access.RequireView(userID, projectID); err != nil {
		return nil, err
	}

	query := s.db.Preload("Assignee").Where("project_id = ?", projectID)
	if status != "" {
		ts := models.TaskStatus(status)
		if !ts.Valid() {
			return nil, response.NewBadRequest("invalid task status")
		}
		query = query.Where("status = ?", ts)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, response.NewServerError("failed to list tasks")
	}
	return tasks, nil
}

// Get returns one task with its assignee and comments.
func (s *TaskService) Get(userID, taskID uint) (*models.Task, error) {
	task, err := s.findVisible(userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Preload("Assignee").First(task, task.ID).Error; err != nil {
		return nil, response.NewServerError("failed to load task")
	}
	return task, nil
}

// Update applies partial changes to a task.
func (s *TaskService) Update(userID, taskID uint, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.findVisible(userID, taskID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != "" {
		status := models.TaskStatus(req.Status)
		if !status.Valid() {
			return nil, response.NewBadRequest("invalid task status")
		}
		updates["status"] = status
	}
	if req.Priority != "" {
		priority := models.TaskPriority(req.Priority)
		if !priority.Valid() {
			return nil, response.NewBadRequest("invalid task priority")
		}
		updates["priority"] = priority
	}
	if req.AssigneeID != nil {
		ok, err := s.access.CanView(*req.AssigneeID, task.ProjectID)
		if err != nil {
			return nil, response.NewServerError("failed to check assignee access")
		}
		if !ok {
			return nil, response.NewBadRequest("assignee is not a member of this project")
		}
		updates["assignee_id"] = req.AssigneeID
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, response.NewServerError("failed to update task")
		}
	}
	return task, nil
}

// Delete removes a task and its comments.
func (s *TaskService) Delete(userID, taskID uint) error {
	task, err := s.findVisible(userID, taskID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return response.NewServerError("failed to delete task")
	}
	return nil
}

// AddComment appends a comment to a task the caller can view.
func (s *TaskService) AddComment(userID, taskID uint, req *CreateCommentRequest) (*models.Comment, error) {
	task, err := s.findVisible(userID, taskID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		TaskID:  task.ID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, response.NewServerError("failed to create comment")
	}
	return &comment, nil
}

// ListComments returns a task's comments oldest first.
func (s *TaskService) ListComments(userID, taskID uint) ([]models.Comment, error) {
	task, err := s.findVisible(userID, taskID)
	if err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.Preload("User").
		Where("task_id = ?", task.ID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, response.NewServerError("failed to list comments")
	}
	return comments, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *TaskService) DeleteComment(userID, commentID uint) error {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("comment not found")
		}
		return response.NewServerError("failed to load comment")
	}
	if _, err := s.findVisible(userID, comment.TaskID); err != nil {
		return err
	}
	if comment.UserID != userID {
		return response.NewForbidden("only the comment author can delete it")
	}

	if err := s.db.Delete(&comment).Error; err != nil {
		return response.NewServerError("failed to delete comment")
	}
	return nil
}
