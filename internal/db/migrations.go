package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		area TEXT NOT NULL,
		periodicity TEXT NOT NULL,
		company TEXT NOT NULL,
		observation TEXT,
		last_maintenance DATE NOT NULL,
		next_maintenance DATE NOT NULL,
		technical_responsible TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS service_calls (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		opening_date DATE NOT NULL,
		protocol TEXT NOT NULL,
		area TEXT NOT NULL,
		problem TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pendente',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS visits (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		date DATE NOT NULL,
		time VARCHAR(5) NOT NULL,
		company TEXT NOT NULL,
		description TEXT NOT NULL,
		responsible TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS avcb_services (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		service TEXT NOT NULL,
		periodicity TEXT NOT NULL,
		last_maintenance DATE NOT NULL,
		next_maintenance DATE NOT NULL,
		days_to_expire INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS budgets (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		description TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS budget_documents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		budget_id UUID NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_type TEXT NOT NULL,
		file_size BIGINT NOT NULL,
		user_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'companies' AND column_name = 'observation' AND is_nullable = 'NO') THEN
			ALTER TABLE companies ALTER COLUMN observation DROP NOT NULL;
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_avcb_services_next_maintenance ON avcb_services (next_maintenance);`,
	`CREATE INDEX IF NOT EXISTS idx_service_calls_status ON service_calls (status);`,
	`CREATE INDEX IF NOT EXISTS idx_budgets_user_id ON budgets (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_budget_documents_budget_id ON budget_documents (budget_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
