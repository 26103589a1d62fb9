package service

import (
	"context"
	"fmt"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/domain/model"
	"taskhunt_web/internal/platform/marketplace"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ProfileService struct {
	api *marketplace.Client
	log *zap.Logger
}

func NewProfileService(api *marketplace.Client, log *zap.Logger) *ProfileService {
	return &ProfileService{api: api, log: log}
}

// Load fetches the profile of the signed-in user together with their task
// list. Only the profile is required; a failed task list renders as empty.
func (s *ProfileService) Load(ctx context.Context, session *model.Session) (*model.Profile, error) {
	if !session.HasToken() {
		return nil, fmt.Errorf("load profile: %w", common.ErrMissingToken)
	}
	if session.UserID == "" {
		return nil, fmt.Errorf("load profile: %w", common.ErrMissingActor)
	}

	profile := &model.Profile{Role: session.Role, Tasks: []model.Task{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		switch session.Role {
		case model.RoleHunter:
			hunter, err := s.api.Hunter(gctx, session.Token, session.UserID)
			if err != nil {
				return err
			}
			profile.Hunter = hunter
		case model.RolePO:
			po, err := s.api.PO(gctx, session.Token, session.UserID)
			if err != nil {
				return err
			}
			profile.PO = po
		default:
			return fmt.Errorf("role %q has no profile: %w", session.Role, common.ErrForbidden)
		}
		return nil
	})

	var tasks []model.Task
	g.Go(func() error {
		var err error
		if session.Role == model.RoleHunter {
			tasks, err = s.api.TasksByHunter(gctx, session.Token, session.UserID)
		} else {
			tasks, err = s.api.TasksByPO(gctx, session.Token, session.UserID)
		}
		if err != nil {
			s.log.Warn("Profile task list fetch failed", zap.String("user_id", session.UserID), zap.Error(err))
			tasks = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load profile %s: %w", session.UserID, err)
	}
	if tasks != nil {
		profile.Tasks = tasks
	}
	return profile, nil
}
