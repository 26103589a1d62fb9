package worker

import (
	"context"
	"sync"
	"taskhunt_web/internal/domain/model"
	"taskhunt_web/internal/domain/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func seed(t *testing.T, repo repository.SessionRepository, id string, expiresAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), &model.Session{ID: id, Token: "tok", ExpiresAt: expiresAt})
	require.NoError(t, err)
}

func TestSessionReaper_RunOnce(t *testing.T) {
	c := &clock{now: time.Now()}
	repo := repository.NewMemorySessionRepository()
	repo.SetClock(c.Now)

	seed(t, repo, "short", c.Now().Add(time.Minute))
	seed(t, repo, "long", c.Now().Add(time.Hour))

	reaper := NewSessionReaper(repo, time.Minute, zaptest.NewLogger(t))
	assert.Zero(t, reaper.RunOnce(context.Background()))

	c.Advance(2 * time.Minute)
	assert.Equal(t, int64(1), reaper.RunOnce(context.Background()))
	assert.Equal(t, 1, repo.Len())
}

func TestSessionReaper_StartStopsOnCancel(t *testing.T) {
	c := &clock{now: time.Now()}
	repo := repository.NewMemorySessionRepository()
	repo.SetClock(c.Now)
	seed(t, repo, "expiring", c.Now().Add(time.Second))
	c.Advance(time.Minute)

	reaper := NewSessionReaper(repo, 5*time.Millisecond, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return repo.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}

func TestSessionReaper_NonPositiveIntervalFallsBack(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		reaper := NewSessionReaper(repository.NewMemorySessionRepository(), interval, zaptest.NewLogger(t))
		assert.Equal(t, DefaultReapInterval, reaper.interval)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			reaper.Start(ctx)
			close(done)
		}()
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("reaper did not stop")
		}
	}
}
