package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsersTable, downCreateUsersTable)
}

func upCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE users (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  name TEXT NOT NULL,
	  email TEXT NOT NULL,
	  password_hash TEXT NOT NULL,
	  address TEXT NOT NULL DEFAULT '',
	  role TEXT NOT NULL DEFAULT 'user',
	  created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
	  CONSTRAINT check_role CHECK (role IN ('admin', 'user', 'store_owner'))
	);

	-- Email uniqueness is case-insensitive
	CREATE UNIQUE INDEX idx_users_email_lower ON users (LOWER(email));
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS users;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
