package models

// MemberRole is a user's role within a single project.
type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// Valid reports whether r is one of the known project roles.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Assignable reports whether r may be granted through add-member or
// invitation flows. OWNER is created only together with its project.
func (r MemberRole) Assignable() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	case RoleOwner:
		return false
	}
	return false
}

// GlobalRole is a user's account-level role, unrelated to project roles.
type GlobalRole string

const (
	GlobalAdmin  GlobalRole = "ADMIN"
	GlobalMember GlobalRole = "MEMBER"
)

func (r GlobalRole) Valid() bool {
	switch r {
	case GlobalAdmin, GlobalMember:
		return true
	}
	return false
}

// ProjectStatus is the workflow state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// InvitationStatus is the stored lifecycle state of a project invitation.
// EXPIRED is normally derived at read time from ExpiresAt; it is persisted
// only by the optional background sweep.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "PENDING"
	InvitationAccepted  InvitationStatus = "ACCEPTED"
	InvitationCancelled InvitationStatus = "CANCELLED"
	InvitationExpired   InvitationStatus = "EXPIRED"
)

func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationCancelled, InvitationExpired:
		return true
	}
	return false
}

// TaskStatus is the kanban column of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
