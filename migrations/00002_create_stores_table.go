package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreateStoresTable, downCreateStoresTable)
}

func upCreateStoresTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS stores (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			address TEXT NOT NULL DEFAULT '',
			owner_id UUID REFERENCES users(id) ON DELETE SET NULL,
			overall_rating NUMERIC(2,1) NOT NULL DEFAULT 0,
			rating_count INT NOT NULL DEFAULT 0,
			logo_url TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_stores_owner_id ON stores(owner_id);
	`)
	return err
}

func downCreateStoresTable(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS stores;`)
	return err
}
