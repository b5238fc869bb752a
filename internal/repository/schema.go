package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS email_logs (
		id            BIGSERIAL PRIMARY KEY,
		sender        TEXT NOT NULL,
		receiver      TEXT NOT NULL,
		subject       TEXT NOT NULL,
		body          TEXT NULL,
		status        TEXT NOT NULL DEFAULT 'QUEUED',
		error_message TEXT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_email_logs_status ON email_logs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_email_logs_created_at ON email_logs (created_at)`,
	`CREATE TABLE IF NOT EXISTS zaansrecht_form (
		id               BIGSERIAL PRIMARY KEY,
		full_name        TEXT NOT NULL,
		email            TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'NEW',
		terms_accepted   BOOLEAN NOT NULL,
		telephone        TEXT NULL,
		description      TEXT NULL,
		subject          TEXT NULL,
		meeting_datetime TIMESTAMPTZ NULL,
		meeting_type     TEXT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_zaansrecht_form_status ON zaansrecht_form (status)`,
	`CREATE TABLE IF NOT EXISTS form_submission_logs (
		id              BIGSERIAL PRIMARY KEY,
		form_id         BIGINT NOT NULL REFERENCES zaansrecht_form (id),
		user_agent      TEXT NOT NULL DEFAULT '',
		referrer        TEXT NOT NULL DEFAULT '',
		x_forwarded_for TEXT[] NOT NULL DEFAULT '{}',
		real_ip         TEXT NOT NULL DEFAULT '',
		captcha_token   TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables if they are missing. It is safe to run on every start.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
