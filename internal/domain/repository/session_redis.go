package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/domain/model"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "taskhunt:session:"

// Redis expires records itself, so DeleteExpired has nothing to do.
type redisSessionRepository struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisSessionRepository(rdb *redis.Client) SessionRepository {
	return &redisSessionRepository{rdb: rdb, now: time.Now}
}

func redisSessionKey(id string) string {
	return redisSessionPrefix + security.SessionKey(id)
}

func (r *redisSessionRepository) Create(ctx context.Context, session *model.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %w", common.ErrBadRequest)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redisSessionRepository.Create: encode: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, redisSessionKey(session.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("redisSessionRepository.Create: %w", err)
	}
	if !ok {
		return fmt.Errorf("session already exists: %w", common.ErrConflict)
	}
	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.rdb.Get(ctx, redisSessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redisSessionRepository.Get: %w", err)
	}
	return decodeSession(id, data)
}

// Save overwrites an existing record and keeps its remaining TTL.
func (r *redisSessionRepository) Save(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redisSessionRepository.Save: encode: %w", err)
	}
	err = r.rdb.SetArgs(ctx, redisSessionKey(session.ID), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.ErrNotFound
		}
		return fmt.Errorf("redisSessionRepository.Save: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, redisSessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redisSessionRepository.Delete: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}
