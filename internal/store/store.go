package store

import (
	"context"

	"github.com/BugaPunk/WorkflowS-sub001/internal/docstore"
	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
)

// ListOptions is re-exported so callers page through listings without
// importing docstore directly.
type ListOptions = docstore.ListOptions

// Store exposes the persistence operations of every entity collection.
// There is one implementation, backed by any kv.Engine; construct it
// with New and an injected engine. Cross-collection cascades are NOT
// performed here; they live in internal/services.
type Store interface {
	Users() Users
	Sessions() Sessions
	Projects() Projects
	Members() Members
	Sprints() Sprints
	Stories() Stories
	Tasks() Tasks
	Comments() Comments
	Reports() Reports
	Schedules() Schedules

	// Repairers lists one repairer per collection, for wiring a
	// docstore.Sweeper.
	Repairers() []docstore.Repairer

	// VerifyAll audits every index of every collection.
	VerifyAll(ctx context.Context, repair bool) ([]docstore.VerifyReport, error)
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]*model.User, string, error)
	Update(ctx context.Context, id string, mutate func(*model.User) error) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type Sessions interface {
	Create(ctx context.Context, s *model.Session) (*model.Session, error)
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]*model.Session, string, error)
	Delete(ctx context.Context, id string) error
}

type Projects interface {
	Create(ctx context.Context, p *model.Project) (*model.Project, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*model.Project, string, error)
	Update(ctx context.Context, id string, mutate func(*model.Project) error) (*model.Project, error)
	Delete(ctx context.Context, id string) error
}

type Members interface {
	Add(ctx context.Context, m *model.ProjectMember) (*model.ProjectMember, error)
	GetByID(ctx context.Context, id string) (*model.ProjectMember, error)
	Get(ctx context.Context, projectID, userID string) (*model.ProjectMember, error)
	ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.ProjectMember, string, error)
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]*model.ProjectMember, string, error)
	Update(ctx context.Context, id string, mutate func(*model.ProjectMember) error) (*model.ProjectMember, error)
	Remove(ctx context.Context, id string) error
}

type Sprints interface {
	Create(ctx context.Context, s *model.Sprint) (*model.Sprint, error)
	GetByID(ctx context.Context, id string) (*model.Sprint, error)
	ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.Sprint, string, error)
	Update(ctx context.Context, id string, mutate func(*model.Sprint) error) (*model.Sprint, error)
	Delete(ctx context.Context, id string) error
}

type Stories interface {
	Create(ctx context.Context, s *model.UserStory) (*model.UserStory, error)
	GetByID(ctx context.Context, id string) (*model.UserStory, error)
	ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.UserStory, string, error)
	ListBySprint(ctx context.Context, sprintID string, opts ListOptions) ([]*model.UserStory, string, error)
	Update(ctx context.Context, id string, mutate func(*model.UserStory) error) (*model.UserStory, error)
	Delete(ctx context.Context, id string) error
}

type Tasks interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, id string) (*model.Task, error)
	ListByStory(ctx context.Context, storyID string, opts ListOptions) ([]*model.Task, string, error)
	ListByAssignee(ctx context.Context, userID string, opts ListOptions) ([]*model.Task, string, error)
	Update(ctx context.Context, id string, mutate func(*model.Task) error) (*model.Task, error)
	Delete(ctx context.Context, id string) error
}

type Comments interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByTask(ctx context.Context, taskID string, opts ListOptions) ([]*model.Comment, string, error)
	ListByAuthor(ctx context.Context, authorID string, opts ListOptions) ([]*model.Comment, string, error)
	Update(ctx context.Context, id string, mutate func(*model.Comment) error) (*model.Comment, error)
	Delete(ctx context.Context, id string) error
}

type Reports interface {
	Create(ctx context.Context, r *model.Report) (*model.Report, error)
	GetByID(ctx context.Context, id string) (*model.Report, error)
	ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.Report, string, error)
	ListByCreator(ctx context.Context, userID string, opts ListOptions) ([]*model.Report, string, error)
	Update(ctx context.Context, id string, mutate func(*model.Report) error) (*model.Report, error)
	Delete(ctx context.Context, id string) error
}

type Schedules interface {
	Create(ctx context.Context, s *model.ReportSchedule) (*model.ReportSchedule, error)
	GetByID(ctx context.Context, id string) (*model.ReportSchedule, error)
	ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.ReportSchedule, string, error)
	ListByReport(ctx context.Context, reportID string, opts ListOptions) ([]*model.ReportSchedule, string, error)
	Update(ctx context.Context, id string, mutate func(*model.ReportSchedule) error) (*model.ReportSchedule, error)
	Delete(ctx context.Context, id string) error
}
