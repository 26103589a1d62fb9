package service

import (
	"context"
	"errors"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/domain/model"
	"taskhunt_web/internal/domain/repository"

	"go.uber.org/zap"
)

// SessionService is the session store as the rest of the app sees it.
type SessionService struct {
	repo repository.SessionRepository
	log  *zap.Logger
}

func NewSessionService(repo repository.SessionRepository, log *zap.Logger) *SessionService {
	return &SessionService{repo: repo, log: log}
}

// Get returns the stored session or an anonymous one when id is unknown or
// expired. Only store failures are errors.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return model.Anonymous(), nil
	}
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return model.Anonymous(), nil
		}
		return nil, err
	}
	return session, nil
}

// Save persists session. Anonymous sessions are not stored. A failed save
// is logged and otherwise ignored: the page still renders.
func (s *SessionService) Save(ctx context.Context, session *model.Session) {
	if session == nil || session.ID == "" {
		return
	}
	if err := s.repo.Save(ctx, session); err != nil {
		s.log.Warn("Session save failed", zap.Error(err))
	}
}

// PopFlashes takes the pending flashes of session for rendering.
func (s *SessionService) PopFlashes(ctx context.Context, session *model.Session) []model.Flash {
	if session == nil || len(session.Flashes) == 0 {
		return nil
	}
	flashes := session.PopFlashes()
	s.Save(ctx, session)
	return flashes
}

func (s *SessionService) create(ctx context.Context, session *model.Session) error {
	return s.repo.Create(ctx, session)
}

func (s *SessionService) delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
