package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"go.uber.org/zap"
)

var DB *sql.DB

// Connect opens the session database pool and verifies it with a ping.
func Connect(ctx context.Context, connStr string, log *zap.Logger) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("error connecting to database: %w", err)
	}

	DB = db
	log.Info("Successfully connected to PostgreSQL database")
	return nil
}

func Close(log *zap.Logger) {
	if DB != nil {
		if err := DB.Close(); err != nil {
			log.Warn("Database close failed", zap.Error(err))
			return
		}
		log.Info("Database connection closed")
	}
}
