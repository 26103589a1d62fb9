package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/domain/model"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func loginMux(t *testing.T, token, role string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var body LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "right" {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"token":%q,"id":42,"role":%q}`, token, role)
	})
	return mux
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t, loginMux(t, "opaque-token", "ROLE_HUNTER"))
	auth := NewAuthService(f.api, f.sessions, 72*time.Hour, zaptest.NewLogger(t))

	res, err := auth.Login(context.Background(), LoginRequest{Email: " ana@example.com ", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "42", res.UserID)
	assert.Equal(t, model.RoleHunter, res.Role)
	assert.Equal(t, "/apply", res.Home())
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), res.ExpiresAt, time.Minute)

	stored := f.reload(t, res.Session)
	assert.Equal(t, "opaque-token", stored.Token)
	assert.Equal(t, "42", stored.UserID)

	token, err := jwtauth.VerifyToken(security.TokenAuth, res.Cookie)
	require.NoError(t, err)
	sid, ok := token.Get("sid")
	require.True(t, ok)
	assert.Equal(t, res.Session.ID, sid)
}

func TestAuthService_LoginUsesTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	upstream, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("marketplace-key"))
	require.NoError(t, err)

	f := newFixture(t, loginMux(t, upstream, "ROLE_PO"))
	auth := NewAuthService(f.api, f.sessions, 72*time.Hour, zaptest.NewLogger(t))

	res, err := auth.Login(context.Background(), LoginRequest{Email: "po@example.com", Password: "right"})
	require.NoError(t, err)
	assert.True(t, res.ExpiresAt.Equal(exp), "session should end with the marketplace token")
	assert.Equal(t, "/home", res.Home())
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Run("validation makes no call", func(t *testing.T) {
		f := newFixture(t, loginMux(t, "tok", "ROLE_PO"))
		auth := NewAuthService(f.api, f.sessions, time.Hour, zaptest.NewLogger(t))
		_, err := auth.Login(context.Background(), LoginRequest{})
		var v *common.ValidationError
		require.ErrorAs(t, err, &v)
		assert.Contains(t, v.Fields, "email")
		assert.Contains(t, v.Fields, "password")
		assert.Zero(t, f.callCount())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		f := newFixture(t, loginMux(t, "tok", "ROLE_PO"))
		auth := NewAuthService(f.api, f.sessions, time.Hour, zaptest.NewLogger(t))
		_, err := auth.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, common.HTTPStatusFromError(err))
		assert.Zero(t, f.repo.Len())
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newFixture(t, loginMux(t, "tok", "ROLE_ADMIN"))
		auth := NewAuthService(f.api, f.sessions, time.Hour, zaptest.NewLogger(t))
		_, err := auth.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "right"})
		assert.ErrorIs(t, err, common.ErrForbidden)
		assert.Zero(t, f.repo.Len())
	})
}

func TestAuthService_SignupHunter(t *testing.T) {
	var got model.HunterSignup
	mux := http.NewServeMux()
	mux.HandleFunc("POST /hunters", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	f := newFixture(t, mux)
	auth := NewAuthService(f.api, f.sessions, time.Hour, zaptest.NewLogger(t))

	err := auth.SignupHunter(context.Background(), SignupHunterRequest{
		CPF: "123.456.789-00", Name: " Ana ", Email: "ana@example.com", Password: "pw", Username: "ana",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "123.456.789-00", got.CPF)

	err = auth.SignupHunter(context.Background(), SignupHunterRequest{Name: "Ana", Email: "not-an-email"})
	var v *common.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "Email is invalid", v.Fields["email"])
	assert.Contains(t, v.Fields, "cpf")
}

func TestAuthService_Logout(t *testing.T) {
	f := newFixture(t, http.NewServeMux())
	auth := NewAuthService(f.api, f.sessions, time.Hour, zaptest.NewLogger(t))
	session := f.storedSession(t, model.RolePO, "p1")

	require.NoError(t, auth.Logout(context.Background(), session))
	_, err := f.repo.Get(context.Background(), session.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.NoError(t, auth.Logout(context.Background(), model.Anonymous()))
}
