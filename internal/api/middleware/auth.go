package middleware

import (
	"context"
	"net/http"
	"slices"
	"taskhunt_web/internal/app/service"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/domain/model"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type contextKey string

const SessionCtxKey contextKey = "session"

// CookieName is the cookie jwtauth.TokenFromCookie reads.
const CookieName = "jwt"

// ErrorFunc renders err as the response.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// LoadSession resolves the verified session cookie into the stored session.
// Requests without a valid cookie carry an anonymous session, so public
// pages and gated pages see the same context shape.
func LoadSession(sessions *service.SessionService, log *zap.Logger, onError ErrorFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := model.Anonymous()

			token, claims, err := jwtauth.FromContext(r.Context())
			if err == nil && token != nil {
				if sid, err := security.GetSessionIDFromClaims(claims); err == nil {
					stored, err := sessions.Get(r.Context(), sid)
					if err != nil {
						log.Error("Session lookup failed", zap.Error(err))
						onError(w, r, err)
						return
					}
					if claimsMatch(claims, stored) {
						session = stored
					} else {
						log.Warn("Session cookie does not match stored session", zap.String("user_id", stored.UserID))
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// claimsMatch reports whether the cookie's user and role are the ones the
// stored session was created for. Anonymous sessions match anything.
func claimsMatch(claims map[string]interface{}, stored *model.Session) bool {
	if !stored.HasToken() {
		return true
	}
	userID, err := security.GetUserIDFromClaims(claims)
	if err != nil || userID != stored.UserID {
		return false
	}
	role, err := security.GetUserRoleFromClaims(claims)
	return err == nil && model.ParseRole(role) == stored.Role
}

// RequireSession stops requests whose session holds no access token.
func RequireSession(onError ErrorFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetSessionFromContext(r.Context()).HasToken() {
				onError(w, r, common.ErrMissingToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole stops requests from sessions without one of roles. A missing
// token is reported before a wrong role.
func RequireRole(onError ErrorFunc, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())
			if !session.HasToken() {
				onError(w, r, common.ErrMissingToken)
				return
			}
			if !slices.Contains(roles, session.Role) {
				onError(w, r, common.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext returns the request's session, anonymous if none
// was loaded.
func GetSessionFromContext(ctx context.Context) *model.Session {
	session, ok := ctx.Value(SessionCtxKey).(*model.Session)
	if !ok || session == nil {
		return model.Anonymous()
	}
	return session
}

// WithSession stores session in ctx.
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, SessionCtxKey, session)
}

func SetSessionCookie(w http.ResponseWriter, value string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
