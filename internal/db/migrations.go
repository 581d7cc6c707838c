package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	// Таблица owners - реестр владельцев: один владелец, один номер
	`CREATE TABLE IF NOT EXISTS owners (
		id                 BIGSERIAL PRIMARY KEY,
		owner_id           TEXT NOT NULL,
		display_name       TEXT NOT NULL,
		vehicle_descriptor TEXT,
		plate_key          TEXT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_owners_owner_id ON owners(owner_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_owners_plate_key ON owners(plate_key);`,

	// Таблица verification_attempts - append-only журнал проверок.
	// matched_owner_id хранится как значение, без FK: удаление владельца
	// не должно трогать историю.
	`CREATE TABLE IF NOT EXISTS verification_attempts (
		id               BIGSERIAL PRIMARY KEY,
		raw_text         TEXT NOT NULL,
		scanned_plate    TEXT NOT NULL,
		matched_owner_id TEXT,
		match_found      BOOLEAN NOT NULL DEFAULT false,
		confidence       NUMERIC(5,4) NOT NULL DEFAULT 0,
		snapshot_url     TEXT,
		details          JSONB,
		scan_timestamp   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_verification_attempts_scanned_plate ON verification_attempts(scanned_plate);`,
	`CREATE INDEX IF NOT EXISTS idx_verification_attempts_scan_timestamp ON verification_attempts(scan_timestamp);`,

	// Добавляем столбцы снапшотов и деталей, если их нет (для существующих таблиц)
	`ALTER TABLE verification_attempts ADD COLUMN IF NOT EXISTS raw_text TEXT NOT NULL DEFAULT '';`,
	`ALTER TABLE verification_attempts ADD COLUMN IF NOT EXISTS snapshot_url TEXT;`,
	`ALTER TABLE verification_attempts ADD COLUMN IF NOT EXISTS details JSONB;`,

	`CREATE INDEX IF NOT EXISTS idx_verification_attempts_plate_time ON verification_attempts(scanned_plate, scan_timestamp DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
