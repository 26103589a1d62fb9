package service

import (
	"context"
	"fmt"
	"strings"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/domain/model"
	"taskhunt_web/internal/platform/marketplace"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	api      *marketplace.Client
	sessions *SessionService
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(api *marketplace.Client, sessions *SessionService, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{api: api, sessions: sessions, ttl: ttl, log: log, now: time.Now}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupHunterRequest struct {
	CPF      string `json:"cpf"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type AuthResponse struct {
	Session   *model.Session `json:"-"`
	Cookie    string         `json:"-"`
	ExpiresAt time.Time      `json:"expires_at"`
	UserID    string         `json:"user_id"`
	Role      model.Role     `json:"role"`
}

// Home is where a freshly signed-in user lands.
func (r *AuthResponse) Home() string {
	if r.Role == model.RoleHunter {
		return "/apply"
	}
	return "/home"
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	v := &common.ValidationError{}
	if strings.TrimSpace(req.Email) == "" {
		v.Add("email", "Email is required")
	}
	if req.Password == "" {
		v.Add("password", "Password is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	res, err := s.api.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	role := model.ParseRole(res.Role)
	if role == "" {
		return nil, fmt.Errorf("unsupported role %q: %w", res.Role, common.ErrForbidden)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	if exp, ok := security.TokenExpiry(res.Token); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}
	if !expiresAt.After(now) {
		return nil, fmt.Errorf("marketplace token already expired: %w", common.ErrUnauthorized)
	}

	session := &model.Session{
		ID:        uuid.NewString(),
		Token:     res.Token,
		UserID:    res.ID.String(),
		Role:      role,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	cookie, err := security.GenerateToken(session.ID, session.UserID, string(role), expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.log.Info("User signed in", zap.String("user_id", session.UserID), zap.String("role", string(role)))

	return &AuthResponse{
		Session:   session,
		Cookie:    cookie,
		ExpiresAt: expiresAt,
		UserID:    session.UserID,
		Role:      role,
	}, nil
}

func (s *AuthService) SignupHunter(ctx context.Context, req SignupHunterRequest) error {
	v := &common.ValidationError{}
	required := []struct{ field, value, label string }{
		{"cpf", req.CPF, "CPF"},
		{"name", req.Name, "Name"},
		{"email", req.Email, "Email"},
		{"password", req.Password, "Password"},
		{"username", req.Username, "Username"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			v.Add(f.field, f.label+" is required")
		}
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		v.Add("email", "Email is invalid")
	}
	if err := v.OrNil(); err != nil {
		return err
	}

	err := s.api.SignupHunter(ctx, model.HunterSignup{
		CPF:      strings.TrimSpace(req.CPF),
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Username: strings.TrimSpace(req.Username),
	})
	if err != nil {
		return fmt.Errorf("hunter signup: %w", err)
	}
	return nil
}

// Logout forgets the stored session. Anonymous sessions have nothing to drop.
func (s *AuthService) Logout(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return nil
	}
	if err := s.sessions.delete(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
