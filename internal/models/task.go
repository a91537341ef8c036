package models

import (
	"time"
)

// Task belongs to a project. Access control is inherited from the parent
// project; tasks carry no authorization state of their own.
type Task struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	ProjectID   uint         `gorm:"index;not null" json:"project_id"`
	Project     *Project     `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"size:20;default:TODO" json:"status"`
	Priority    TaskPriority `gorm:"size:20;default:MEDIUM" json:"priority"`
	AssigneeID  *uint        `json:"assignee_id"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
