package services

import (
	"context"

	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// UserService handles user lifecycle. Deleting a user revokes their
// sessions, removes their project memberships and unassigns their tasks;
// authored comments and created reports stay, attributed to the stale id.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService { return &UserService{store: s} }

func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	return s.store.Users().Create(ctx, u)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.store.Users().GetByEmail(ctx, email)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.store.Users().GetByUsername(ctx, username)
}

func (s *UserService) ListUsers(ctx context.Context, opts store.ListOptions) ([]*model.User, string, error) {
	return s.store.Users().List(ctx, opts)
}

func (s *UserService) UpdateUser(ctx context.Context, userID string, mutate func(*model.User) error) (*model.User, error) {
	return s.store.Users().Update(ctx, userID, mutate)
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return err
	}
	err := drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.Session, string, error) {
		return s.store.Sessions().ListByUser(ctx, userID, opts)
	}, func(sess *model.Session) error {
		return s.store.Sessions().Delete(ctx, sess.ID)
	})
	if err != nil {
		return err
	}
	err = drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.ProjectMember, string, error) {
		return s.store.Members().ListByUser(ctx, userID, opts)
	}, func(m *model.ProjectMember) error {
		return s.store.Members().Remove(ctx, m.ID)
	})
	if err != nil {
		return err
	}
	err = drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.Task, string, error) {
		return s.store.Tasks().ListByAssignee(ctx, userID, opts)
	}, func(t *model.Task) error {
		_, err := s.store.Tasks().Update(ctx, t.ID, func(tk *model.Task) error {
			tk.AssignedTo = ""
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	return s.store.Users().Delete(ctx, userID)
}
