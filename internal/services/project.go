package services

import (
	"context"

	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// ProjectService handles projects and their memberships. Deleting a project
// sweeps members, sprints, stories (with their tasks and comments), reports
// and schedules.
type ProjectService struct {
	store store.Store
}

func NewProjectService(s store.Store) *ProjectService { return &ProjectService{store: s} }

// CreateProject also enrolls the owner as a member so that membership
// listings cover everyone with access.
func (s *ProjectService) CreateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	owner, err := s.store.Users().GetByID(ctx, p.OwnerID)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Projects().Create(ctx, p)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Members().Add(ctx, &model.ProjectMember{
		ProjectID: created.ID,
		UserID:    owner.ID,
		Role:      owner.Role,
	}); err != nil {
		_ = s.store.Projects().Delete(ctx, created.ID)
		return nil, err
	}
	return created, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	return s.store.Projects().GetByID(ctx, projectID)
}

func (s *ProjectService) ListProjectsByOwner(ctx context.Context, ownerID string, opts store.ListOptions) ([]*model.Project, string, error) {
	return s.store.Projects().ListByOwner(ctx, ownerID, opts)
}

func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, mutate func(*model.Project) error) (*model.Project, error) {
	return s.store.Projects().Update(ctx, projectID, mutate)
}

func (s *ProjectService) AddMember(ctx context.Context, projectID, userID string, role model.Role) (*model.ProjectMember, error) {
	if _, err := s.store.Projects().GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Members().Add(ctx, &model.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	})
}

func (s *ProjectService) GetMember(ctx context.Context, projectID, userID string) (*model.ProjectMember, error) {
	return s.store.Members().Get(ctx, projectID, userID)
}

func (s *ProjectService) ListMembers(ctx context.Context, projectID string, opts store.ListOptions) ([]*model.ProjectMember, string, error) {
	return s.store.Members().ListByProject(ctx, projectID, opts)
}

func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID string) error {
	m, err := s.store.Members().Get(ctx, projectID, userID)
	if err != nil {
		return err
	}
	return s.store.Members().Remove(ctx, m.ID)
}

func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.store.Projects().GetByID(ctx, projectID); err != nil {
		return err
	}
	err := drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.ProjectMember, string, error) {
		return s.store.Members().ListByProject(ctx, projectID, opts)
	}, func(m *model.ProjectMember) error {
		return s.store.Members().Remove(ctx, m.ID)
	})
	if err != nil {
		return err
	}
	err = drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.UserStory, string, error) {
		return s.store.Stories().ListByProject(ctx, projectID, opts)
	}, func(st *model.UserStory) error {
		return deleteStoryCascade(ctx, s.store, st.ID)
	})
	if err != nil {
		return err
	}
	err = drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.Sprint, string, error) {
		return s.store.Sprints().ListByProject(ctx, projectID, opts)
	}, func(sp *model.Sprint) error {
		return s.store.Sprints().Delete(ctx, sp.ID)
	})
	if err != nil {
		return err
	}
	err = drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.Report, string, error) {
		return s.store.Reports().ListByProject(ctx, projectID, opts)
	}, func(r *model.Report) error {
		return deleteReportCascade(ctx, s.store, r.ID)
	})
	if err != nil {
		return err
	}
	// Schedules are reachable via their report, but sweep the project index
	// too in case a schedule outlived a directly deleted report.
	err = drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.ReportSchedule, string, error) {
		return s.store.Schedules().ListByProject(ctx, projectID, opts)
	}, func(sc *model.ReportSchedule) error {
		return s.store.Schedules().Delete(ctx, sc.ID)
	})
	if err != nil {
		return err
	}
	return s.store.Projects().Delete(ctx, projectID)
}
