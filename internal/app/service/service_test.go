package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/domain/model"
	"taskhunt_web/internal/domain/repository"
	"taskhunt_web/internal/platform/marketplace"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	api      *marketplace.Client
	repo     *repository.MemorySessionRepository
	sessions *SessionService
	calls    *int32
}

// newFixture serves mux as the marketplace and counts the calls it gets.
func newFixture(t *testing.T, mux *http.ServeMux) *fixture {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	log := zaptest.NewLogger(t)
	repo := repository.NewMemorySessionRepository()
	security.InitJWT([]byte("test-secret"))
	return &fixture{
		api:      marketplace.NewClient(server.URL, 5*time.Second, log),
		repo:     repo,
		sessions: NewSessionService(repo, log),
		calls:    &calls,
	}
}

func (f *fixture) callCount() int32 { return atomic.LoadInt32(f.calls) }

// storedSession creates a live session in the fixture's store.
func (f *fixture) storedSession(t *testing.T, role model.Role, userID string) *model.Session {
	t.Helper()
	session := &model.Session{
		ID:        "sess-" + userID,
		Token:     "tok",
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, f.repo.Create(context.Background(), session))
	return session
}

func (f *fixture) reload(t *testing.T, session *model.Session) *model.Session {
	t.Helper()
	got, err := f.repo.Get(context.Background(), session.ID)
	require.NoError(t, err)
	return got
}

func TestSessionService_Get(t *testing.T) {
	f := newFixture(t, http.NewServeMux())
	ctx := context.Background()

	anon, err := f.sessions.Get(ctx, "")
	require.NoError(t, err)
	assert.False(t, anon.HasToken())

	anon, err = f.sessions.Get(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, anon.HasToken())

	stored := f.storedSession(t, model.RolePO, "p1")
	got, err := f.sessions.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.UserID)
	assert.Equal(t, stored.ID, got.ID)
}

func TestSessionService_SaveSkipsAnonymous(t *testing.T) {
	f := newFixture(t, http.NewServeMux())
	f.sessions.Save(context.Background(), model.Anonymous())
	f.sessions.Save(context.Background(), nil)
	assert.Zero(t, f.repo.Len())
}

func TestSessionService_PopFlashes(t *testing.T) {
	f := newFixture(t, http.NewServeMux())
	ctx := context.Background()
	session := f.storedSession(t, model.RoleHunter, "h1")
	session.AddFlash(model.FlashSuccess, "Saved", "")
	f.sessions.Save(ctx, session)

	flashes := f.sessions.PopFlashes(ctx, session)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Saved", flashes[0].Title)
	assert.Empty(t, f.reload(t, session).Flashes)
	assert.Nil(t, f.sessions.PopFlashes(ctx, session))
}
