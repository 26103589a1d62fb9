package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/domain/model"
	"time"
)

type memoryRecord struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process. Records are stored
// encoded so callers never share a *model.Session with the store.
type MemorySessionRepository struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

// SetClock replaces the time source; tests use it to expire records.
func (r *MemorySessionRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemorySessionRepository) Create(_ context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("MemorySessionRepository.Create: encode: %w", err)
	}
	key := security.SessionKey(session.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[key]; ok && r.now().Before(rec.expiresAt) {
		return fmt.Errorf("session already exists: %w", common.ErrConflict)
	}
	r.records[key] = memoryRecord{data: data, expiresAt: session.ExpiresAt}
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	rec, ok := r.records[security.SessionKey(id)]
	live := ok && r.now().Before(rec.expiresAt)
	r.mu.Unlock()

	if !live {
		return nil, common.ErrNotFound
	}
	return decodeSession(id, rec.data)
}

func (r *MemorySessionRepository) Save(_ context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("MemorySessionRepository.Save: encode: %w", err)
	}
	key := security.SessionKey(session.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok || !r.now().Before(rec.expiresAt) {
		return common.ErrNotFound
	}
	rec.data = data
	r.records[key] = rec
	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, security.SessionKey(id))
	return nil
}

func (r *MemorySessionRepository) DeleteExpired(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var n int64
	for key, rec := range r.records {
		if !now.Before(rec.expiresAt) {
			delete(r.records, key)
			n++
		}
	}
	return n, nil
}

func (r *MemorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
