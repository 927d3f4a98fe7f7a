package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "quiz_user")
	password := getEnv("DB_PASSWORD", "quiz_password")
	dbname := getEnv("DB_NAME", "objective_prep")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS groups (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(100) UNIQUE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS objectives (
		id         BIGSERIAL PRIMARY KEY,
		text       TEXT NOT NULL,
		group_id   BIGINT REFERENCES groups(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_objectives_group ON objectives(group_id);
	CREATE INDEX IF NOT EXISTS idx_objectives_created ON objectives(created_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_objectives_text ON objectives(text);

	CREATE TABLE IF NOT EXISTS insights (
		id            BIGSERIAL PRIMARY KEY,
		key           VARCHAR(50) NOT NULL DEFAULT 'global',
		group_id      BIGINT REFERENCES groups(id) ON DELETE CASCADE,
		weak_points   TEXT NOT NULL DEFAULT '[]',
		strong_points TEXT NOT NULL DEFAULT '[]',
		study_plan    TEXT NOT NULL DEFAULT '[]',
		created_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(key, group_id)
	);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id              BIGSERIAL PRIMARY KEY,
		quiz            TEXT NOT NULL,
		answers         TEXT NOT NULL,
		feedback        TEXT NOT NULL,
		domain          VARCHAR(100) NOT NULL DEFAULT 'general',
		enforce_quality BOOLEAN NOT NULL DEFAULT FALSE,
		correct_count   INT NOT NULL DEFAULT 0,
		question_count  INT NOT NULL DEFAULT 0,
		group_id        BIGINT REFERENCES groups(id) ON DELETE SET NULL,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_created ON quiz_attempts(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_attempts_group ON quiz_attempts(group_id);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Partial unique index so only one global (NULL group) insight row
	// can exist; the UNIQUE(key, group_id) constraint does not cover
	// NULLs in postgres.
	if _, err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_insights_global
		 ON insights(key) WHERE group_id IS NULL`,
	); err != nil {
		return fmt.Errorf("create index failed: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
