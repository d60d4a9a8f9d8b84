package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreateRatingsTable, downCreateRatingsTable)
}

func upCreateRatingsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS ratings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			store_id UUID NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
			rating INT NOT NULL CHECK (rating >= 1 AND rating <= 5),
			comment TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			-- Ensure a user can only rate a store once; resubmission updates
			UNIQUE (user_id, store_id)
		);

		CREATE INDEX IF NOT EXISTS idx_ratings_store_id ON ratings(store_id);
		CREATE INDEX IF NOT EXISTS idx_ratings_user_id ON ratings(user_id);
	`)
	return err
}

func downCreateRatingsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS ratings;`)
	return err
}
