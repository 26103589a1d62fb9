package worker

import (
	"context"
	"taskhunt_web/internal/domain/repository"
	"time"

	"go.uber.org/zap"
)

// DefaultReapInterval replaces a non-positive interval.
const DefaultReapInterval = time.Minute

type SessionReaper struct {
	repo     repository.SessionRepository
	interval time.Duration
	log      *zap.Logger
}

func NewSessionReaper(repo repository.SessionRepository, interval time.Duration, log *zap.Logger) *SessionReaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &SessionReaper{repo: repo, interval: interval, log: log}
}

// Start purges expired sessions every interval until ctx is cancelled.
func (w *SessionReaper) Start(ctx context.Context) {
	w.log.Info("Session reaper started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Session reaper stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge.
func (w *SessionReaper) RunOnce(ctx context.Context) int64 {
	n, err := w.repo.DeleteExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error("Failed to purge expired sessions", zap.Error(err))
		}
		return 0
	}
	if n > 0 {
		w.log.Info("Purged expired sessions", zap.Int64("count", n))
	}
	return n
}
