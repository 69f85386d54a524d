package model

import (
	"time"

	"github.com/BugaPunk/WorkflowS-sub001/internal/docstore"
)

// Role is a user's position in the organization.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProductOwner Role = "product_owner"
	RoleScrumMaster  Role = "scrum_master"
	RoleDeveloper    Role = "developer"
	RoleVocal        Role = "vocal"
)

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// StoryStatus is the lifecycle state of a user story.
type StoryStatus string

const (
	StoryBacklog    StoryStatus = "backlog"
	StoryTodo       StoryStatus = "todo"
	StoryInProgress StoryStatus = "in_progress"
	StoryDone       StoryStatus = "done"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// ReportFormat selects how a report payload is rendered downstream.
type ReportFormat string

const (
	ReportPDF  ReportFormat = "pdf"
	ReportCSV  ReportFormat = "csv"
	ReportHTML ReportFormat = "html"
)

// ScheduleFrequency is how often a scheduled report fires.
type ScheduleFrequency string

const (
	ScheduleDaily     ScheduleFrequency = "daily"
	ScheduleWeekly    ScheduleFrequency = "weekly"
	ScheduleSprintEnd ScheduleFrequency = "sprint_end"
)

// User is an account in the system.
type User struct {
	docstore.Envelope
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
}

// Session is a login session bound to a user.
type Session struct {
	docstore.Envelope
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// Project groups sprints, stories and members.
type Project struct {
	docstore.Envelope
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"ownerId"`
}

// ProjectMember binds a user to a project with a per-project role.
type ProjectMember struct {
	docstore.Envelope
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
}

// Sprint is a time-boxed iteration inside a project.
type Sprint struct {
	docstore.Envelope
	ProjectID string       `json:"projectId"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal,omitempty"`
	Status    SprintStatus `json:"status"`
	StartDate *time.Time   `json:"startDate,omitempty"`
	EndDate   *time.Time   `json:"endDate,omitempty"`
}

// UserStory is a unit of product work, optionally assigned to a sprint.
type UserStory struct {
	docstore.Envelope
	ProjectID          string      `json:"projectId"`
	SprintID           string      `json:"sprintId,omitempty"`
	Title              string      `json:"title"`
	Description        string      `json:"description,omitempty"`
	AcceptanceCriteria string      `json:"acceptanceCriteria,omitempty"`
	Priority           int         `json:"priority"`
	Points             int         `json:"points"`
	Status             StoryStatus `json:"status"`
}

// Task is a unit of technical work under a user story.
type Task struct {
	docstore.Envelope
	UserStoryID    string     `json:"userStoryId"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status"`
	AssignedTo     string     `json:"assignedTo,omitempty"`
	EstimatedHours float64    `json:"estimatedHours"`
	SpentHours     float64    `json:"spentHours"`
}

// Comment is a remark on a task.
type Comment struct {
	docstore.Envelope
	TaskID   string `json:"taskId"`
	AuthorID string `json:"authorId"`
	Body     string `json:"body"`
}

// Report is a generated project report with an opaque payload.
type Report struct {
	docstore.Envelope
	ProjectID string       `json:"projectId"`
	CreatedBy string       `json:"createdBy"`
	Title     string       `json:"title"`
	Format    ReportFormat `json:"format"`
	Payload   []byte       `json:"payload,omitempty"`
}

// ReportSchedule re-generates a report on a cadence.
type ReportSchedule struct {
	docstore.Envelope
	ReportID   string            `json:"reportId"`
	ProjectID  string            `json:"projectId"`
	Frequency  ScheduleFrequency `json:"frequency"`
	Recipients []string          `json:"recipients,omitempty"`
	NextRunAt  time.Time         `json:"nextRunAt"`
}
