package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BugaPunk/WorkflowS-sub001/internal/docstore"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
)

// New builds the KV-backed store over an injected engine.
func New(eng kv.Engine, log zerolog.Logger) (Store, error) {
	s := &kvStore{}
	var err error
	if s.users, err = docstore.New[model.User](eng, userCollection(), log); err != nil {
		return nil, err
	}
	if s.sessions, err = docstore.New[model.Session](eng, sessionCollection(), log); err != nil {
		return nil, err
	}
	if s.projects, err = docstore.New[model.Project](eng, projectCollection(), log); err != nil {
		return nil, err
	}
	if s.members, err = docstore.New[model.ProjectMember](eng, memberCollection(), log); err != nil {
		return nil, err
	}
	if s.sprints, err = docstore.New[model.Sprint](eng, sprintCollection(), log); err != nil {
		return nil, err
	}
	if s.stories, err = docstore.New[model.UserStory](eng, storyCollection(), log); err != nil {
		return nil, err
	}
	if s.tasks, err = docstore.New[model.Task](eng, taskCollection(), log); err != nil {
		return nil, err
	}
	if s.comments, err = docstore.New[model.Comment](eng, commentCollection(), log); err != nil {
		return nil, err
	}
	if s.reports, err = docstore.New[model.Report](eng, reportCollection(), log); err != nil {
		return nil, err
	}
	if s.schedules, err = docstore.New[model.ReportSchedule](eng, scheduleCollection(), log); err != nil {
		return nil, err
	}
	return s, nil
}

type kvStore struct {
	users     *docstore.Store[model.User, *model.User]
	sessions  *docstore.Store[model.Session, *model.Session]
	projects  *docstore.Store[model.Project, *model.Project]
	members   *docstore.Store[model.ProjectMember, *model.ProjectMember]
	sprints   *docstore.Store[model.Sprint, *model.Sprint]
	stories   *docstore.Store[model.UserStory, *model.UserStory]
	tasks     *docstore.Store[model.Task, *model.Task]
	comments  *docstore.Store[model.Comment, *model.Comment]
	reports   *docstore.Store[model.Report, *model.Report]
	schedules *docstore.Store[model.ReportSchedule, *model.ReportSchedule]
}

func (s *kvStore) Users() Users         { return &users{s.users} }
func (s *kvStore) Sessions() Sessions   { return &sessions{s.sessions} }
func (s *kvStore) Projects() Projects   { return &projects{s.projects} }
func (s *kvStore) Members() Members     { return &members{s.members} }
func (s *kvStore) Sprints() Sprints     { return &sprints{s.sprints} }
func (s *kvStore) Stories() Stories     { return &stories{s.stories} }
func (s *kvStore) Tasks() Tasks         { return &tasks{s.tasks} }
func (s *kvStore) Comments() Comments   { return &comments{s.comments} }
func (s *kvStore) Reports() Reports     { return &reports{s.reports} }
func (s *kvStore) Schedules() Schedules { return &schedules{s.schedules} }

func (s *kvStore) Repairers() []docstore.Repairer {
	return []docstore.Repairer{
		s.users, s.sessions, s.projects, s.members, s.sprints,
		s.stories, s.tasks, s.comments, s.reports, s.schedules,
	}
}

func (s *kvStore) VerifyAll(ctx context.Context, repair bool) ([]docstore.VerifyReport, error) {
	var out []docstore.VerifyReport
	collect := func(reports []docstore.VerifyReport, err error) error {
		if err != nil {
			return err
		}
		out = append(out, reports...)
		return nil
	}
	if err := collect(s.users.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.sessions.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.projects.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.members.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.sprints.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.stories.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.tasks.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.comments.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.reports.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	if err := collect(s.schedules.VerifyAll(ctx, repair)); err != nil {
		return out, err
	}
	return out, nil
}

// --- Users ---
type users struct {
	ds *docstore.Store[model.User, *model.User]
}

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	return u.ds.Create(ctx, m)
}

func (u *users) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.ds.GetByID(ctx, id)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.ds.GetByIndex(ctx, idxByEmail, email)
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return u.ds.GetByIndex(ctx, idxByUsername, username)
}

func (u *users) List(ctx context.Context, opts ListOptions) ([]*model.User, string, error) {
	// the unique username index doubles as the stable listing order
	return u.ds.List(ctx, idxByUsername, nil, opts)
}

func (u *users) Update(ctx context.Context, id string, mutate func(*model.User) error) (*model.User, error) {
	return u.ds.Update(ctx, id, mutate)
}

func (u *users) Delete(ctx context.Context, id string) error {
	return u.ds.Delete(ctx, id)
}

// --- Sessions ---
type sessions struct {
	ds *docstore.Store[model.Session, *model.Session]
}

func (s *sessions) Create(ctx context.Context, m *model.Session) (*model.Session, error) {
	return s.ds.Create(ctx, m)
}

func (s *sessions) GetByID(ctx context.Context, id string) (*model.Session, error) {
	return s.ds.GetByID(ctx, id)
}

func (s *sessions) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	return s.ds.GetByIndex(ctx, idxByToken, token)
}

func (s *sessions) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]*model.Session, string, error) {
	return s.ds.List(ctx, idxByUser, []string{userID}, opts)
}

func (s *sessions) Delete(ctx context.Context, id string) error {
	return s.ds.Delete(ctx, id)
}

// --- Projects ---
type projects struct {
	ds *docstore.Store[model.Project, *model.Project]
}

func (p *projects) Create(ctx context.Context, m *model.Project) (*model.Project, error) {
	return p.ds.Create(ctx, m)
}

func (p *projects) GetByID(ctx context.Context, id string) (*model.Project, error) {
	return p.ds.GetByID(ctx, id)
}

func (p *projects) ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*model.Project, string, error) {
	return p.ds.List(ctx, idxByOwner, []string{ownerID}, opts)
}

func (p *projects) Update(ctx context.Context, id string, mutate func(*model.Project) error) (*model.Project, error) {
	return p.ds.Update(ctx, id, mutate)
}

func (p *projects) Delete(ctx context.Context, id string) error {
	return p.ds.Delete(ctx, id)
}

// --- Members ---
type members struct {
	ds *docstore.Store[model.ProjectMember, *model.ProjectMember]
}

func (m *members) Add(ctx context.Context, mm *model.ProjectMember) (*model.ProjectMember, error) {
	return m.ds.Create(ctx, mm)
}

func (m *members) GetByID(ctx context.Context, id string) (*model.ProjectMember, error) {
	return m.ds.GetByID(ctx, id)
}

func (m *members) Get(ctx context.Context, projectID, userID string) (*model.ProjectMember, error) {
	return m.ds.GetByIndex(ctx, idxByProject, projectID, userID)
}

func (m *members) ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.ProjectMember, string, error) {
	return m.ds.List(ctx, idxByProject, []string{projectID}, opts)
}

func (m *members) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]*model.ProjectMember, string, error) {
	return m.ds.List(ctx, idxByUser, []string{userID}, opts)
}

func (m *members) Update(ctx context.Context, id string, mutate func(*model.ProjectMember) error) (*model.ProjectMember, error) {
	return m.ds.Update(ctx, id, mutate)
}

func (m *members) Remove(ctx context.Context, id string) error {
	return m.ds.Delete(ctx, id)
}

// --- Sprints ---
type sprints struct {
	ds *docstore.Store[model.Sprint, *model.Sprint]
}

func (s *sprints) Create(ctx context.Context, m *model.Sprint) (*model.Sprint, error) {
	return s.ds.Create(ctx, m)
}

func (s *sprints) GetByID(ctx context.Context, id string) (*model.Sprint, error) {
	return s.ds.GetByID(ctx, id)
}

func (s *sprints) ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.Sprint, string, error) {
	return s.ds.List(ctx, idxByProject, []string{projectID}, opts)
}

func (s *sprints) Update(ctx context.Context, id string, mutate func(*model.Sprint) error) (*model.Sprint, error) {
	return s.ds.Update(ctx, id, mutate)
}

func (s *sprints) Delete(ctx context.Context, id string) error {
	return s.ds.Delete(ctx, id)
}

// --- Stories ---
type stories struct {
	ds *docstore.Store[model.UserStory, *model.UserStory]
}

func (s *stories) Create(ctx context.Context, m *model.UserStory) (*model.UserStory, error) {
	return s.ds.Create(ctx, m)
}

func (s *stories) GetByID(ctx context.Context, id string) (*model.UserStory, error) {
	return s.ds.GetByID(ctx, id)
}

func (s *stories) ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.UserStory, string, error) {
	return s.ds.List(ctx, idxByProject, []string{projectID}, opts)
}

func (s *stories) ListBySprint(ctx context.Context, sprintID string, opts ListOptions) ([]*model.UserStory, string, error) {
	return s.ds.List(ctx, idxBySprint, []string{sprintID}, opts)
}

func (s *stories) Update(ctx context.Context, id string, mutate func(*model.UserStory) error) (*model.UserStory, error) {
	return s.ds.Update(ctx, id, mutate)
}

func (s *stories) Delete(ctx context.Context, id string) error {
	return s.ds.Delete(ctx, id)
}

// --- Tasks ---
type tasks struct {
	ds *docstore.Store[model.Task, *model.Task]
}

func (t *tasks) Create(ctx context.Context, m *model.Task) (*model.Task, error) {
	return t.ds.Create(ctx, m)
}

func (t *tasks) GetByID(ctx context.Context, id string) (*model.Task, error) {
	return t.ds.GetByID(ctx, id)
}

func (t *tasks) ListByStory(ctx context.Context, storyID string, opts ListOptions) ([]*model.Task, string, error) {
	return t.ds.List(ctx, idxByStory, []string{storyID}, opts)
}

func (t *tasks) ListByAssignee(ctx context.Context, userID string, opts ListOptions) ([]*model.Task, string, error) {
	return t.ds.List(ctx, idxByAssignee, []string{userID}, opts)
}

func (t *tasks) Update(ctx context.Context, id string, mutate func(*model.Task) error) (*model.Task, error) {
	return t.ds.Update(ctx, id, mutate)
}

func (t *tasks) Delete(ctx context.Context, id string) error {
	return t.ds.Delete(ctx, id)
}

// --- Comments ---
type comments struct {
	ds *docstore.Store[model.Comment, *model.Comment]
}

func (c *comments) Create(ctx context.Context, m *model.Comment) (*model.Comment, error) {
	return c.ds.Create(ctx, m)
}

func (c *comments) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	return c.ds.GetByID(ctx, id)
}

func (c *comments) ListByTask(ctx context.Context, taskID string, opts ListOptions) ([]*model.Comment, string, error) {
	return c.ds.List(ctx, idxByTask, []string{taskID}, opts)
}

func (c *comments) ListByAuthor(ctx context.Context, authorID string, opts ListOptions) ([]*model.Comment, string, error) {
	return c.ds.List(ctx, idxByAuthor, []string{authorID}, opts)
}

func (c *comments) Update(ctx context.Context, id string, mutate func(*model.Comment) error) (*model.Comment, error) {
	return c.ds.Update(ctx, id, mutate)
}

func (c *comments) Delete(ctx context.Context, id string) error {
	return c.ds.Delete(ctx, id)
}

// --- Reports ---
type reports struct {
	ds *docstore.Store[model.Report, *model.Report]
}

func (r *reports) Create(ctx context.Context, m *model.Report) (*model.Report, error) {
	return r.ds.Create(ctx, m)
}

func (r *reports) GetByID(ctx context.Context, id string) (*model.Report, error) {
	return r.ds.GetByID(ctx, id)
}

func (r *reports) ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.Report, string, error) {
	return r.ds.List(ctx, idxByProject, []string{projectID}, opts)
}

func (r *reports) ListByCreator(ctx context.Context, userID string, opts ListOptions) ([]*model.Report, string, error) {
	return r.ds.List(ctx, idxByCreator, []string{userID}, opts)
}

func (r *reports) Update(ctx context.Context, id string, mutate func(*model.Report) error) (*model.Report, error) {
	return r.ds.Update(ctx, id, mutate)
}

func (r *reports) Delete(ctx context.Context, id string) error {
	return r.ds.Delete(ctx, id)
}

// --- Schedules ---
type schedules struct {
	ds *docstore.Store[model.ReportSchedule, *model.ReportSchedule]
}

func (s *schedules) Create(ctx context.Context, m *model.ReportSchedule) (*model.ReportSchedule, error) {
	return s.ds.Create(ctx, m)
}

func (s *schedules) GetByID(ctx context.Context, id string) (*model.ReportSchedule, error) {
	return s.ds.GetByID(ctx, id)
}

func (s *schedules) ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]*model.ReportSchedule, string, error) {
	return s.ds.List(ctx, idxByProject, []string{projectID}, opts)
}

func (s *schedules) ListByReport(ctx context.Context, reportID string, opts ListOptions) ([]*model.ReportSchedule, string, error) {
	return s.ds.List(ctx, idxByReport, []string{reportID}, opts)
}

func (s *schedules) Update(ctx context.Context, id string, mutate func(*model.ReportSchedule) error) (*model.ReportSchedule, error) {
	return s.ds.Update(ctx, id, mutate)
}

func (s *schedules) Delete(ctx context.Context, id string) error {
	return s.ds.Delete(ctx, id)
}
