package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// SessionRepository persists browser sessions. Get never returns an expired
// record; it reports common.ErrNotFound instead.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

const SessionSchema = `
CREATE TABLE IF NOT EXISTS web_sessions (
	session_key TEXT PRIMARY KEY,
	data        JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS web_sessions_expires_at_idx ON web_sessions (expires_at);
`

type pgSessionRepository struct {
	db *sql.DB
}

func NewPgSessionRepository(db *sql.DB) SessionRepository {
	return &pgSessionRepository{db: db}
}

// Migrate creates the session table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, SessionSchema); err != nil {
		return fmt.Errorf("repository.Migrate: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) Create(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("pgSessionRepository.Create: encode: %w", err)
	}
	query := `INSERT INTO web_sessions (session_key, data, created_at, expires_at)
	          VALUES ($1, $2, $3, $4)`
	_, err = r.db.ExecContext(ctx, query, security.SessionKey(session.ID), data, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("session already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgSessionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT data FROM web_sessions WHERE session_key = $1 AND expires_at > now()`
	var data []byte
	err := r.db.QueryRowContext(ctx, query, security.SessionKey(id)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSessionRepository.Get: %w", err)
	}
	return decodeSession(id, data)
}

func (r *pgSessionRepository) Save(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("pgSessionRepository.Save: encode: %w", err)
	}
	query := `UPDATE web_sessions SET data = $2, updated_at = now()
	          WHERE session_key = $1 AND expires_at > now()`
	res, err := r.db.ExecContext(ctx, query, security.SessionKey(session.ID), data)
	if err != nil {
		return fmt.Errorf("pgSessionRepository.Save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgSessionRepository.Save: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSessionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM web_sessions WHERE session_key = $1`
	if _, err := r.db.ExecContext(ctx, query, security.SessionKey(id)); err != nil {
		return fmt.Errorf("pgSessionRepository.Delete: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM web_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("pgSessionRepository.DeleteExpired: %w", err)
	}
	return res.RowsAffected()
}

func decodeSession(id string, data []byte) (*model.Session, error) {
	session := &model.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session.ID = id
	return session, nil
}
