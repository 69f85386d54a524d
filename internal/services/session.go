package services

import (
	"context"
	"time"

	"github.com/BugaPunk/WorkflowS-sub001/internal/docstore"
	"github.com/BugaPunk/WorkflowS-sub001/internal/model"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// SessionService issues and resolves login sessions. Expired sessions are
// reaped lazily on lookup rather than by a background job.
type SessionService struct {
	store store.Store
	now   func() time.Time
}

func NewSessionService(s store.Store) *SessionService {
	return &SessionService{store: s, now: time.Now}
}

func (s *SessionService) CreateSession(ctx context.Context, userID, token string, ttl time.Duration) (*model.Session, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Sessions().Create(ctx, &model.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().Add(ttl),
	})
}

// ResolveToken returns the live session for a token. An expired session is
// deleted and reported as not found.
func (s *SessionService) ResolveToken(ctx context.Context, token string) (*model.Session, error) {
	sess, err := s.store.Sessions().GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		_ = s.store.Sessions().Delete(ctx, sess.ID)
		return nil, docstore.ErrNotFound
	}
	return sess, nil
}

func (s *SessionService) RevokeSession(ctx context.Context, sessionID string) error {
	return s.store.Sessions().Delete(ctx, sessionID)
}

// RevokeAll drops every session the user holds, e.g. on password change.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	return drain(ctx, func(ctx context.Context, opts store.ListOptions) ([]*model.Session, string, error) {
		return s.store.Sessions().ListByUser(ctx, userID, opts)
	}, func(sess *model.Session) error {
		return s.store.Sessions().Delete(ctx, sess.ID)
	})
}
