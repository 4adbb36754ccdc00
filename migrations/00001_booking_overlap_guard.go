package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upBookingOverlapGuard, downBookingOverlapGuard)
}

// Не-отменённые брони одной комнаты не могут пересекаться: [check_in, check_out)
func upBookingOverlapGuard(tx *sql.Tx) error {
	if !isPostgres() {
		// SQLite сериализует писателей, проверка остаётся в транзакции сервиса
		return nil
	}

	if _, err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`); err != nil {
		return fmt.Errorf("failed to enable btree_gist: %w", err)
	}

	query := `
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
				ALTER TABLE bookings
					ADD CONSTRAINT bookings_no_overlap
					EXCLUDE USING gist (
						room_id WITH =,
						tstzrange(check_in_date, check_out_date, '[)') WITH &&
					)
					WHERE (status <> 'cancelled');
			END IF;
		END $$;
	`
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to add overlap constraint: %w", err)
	}
	return nil
}

func downBookingOverlapGuard(tx *sql.Tx) error {
	if !isPostgres() {
		return nil
	}
	_, err := tx.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_no_overlap`)
	return err
}
