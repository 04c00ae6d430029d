package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'tag_status') THEN
			CREATE TYPE tag_status AS ENUM ('pending', 'applied', 'drawn', 'unsuccessful', 'confirmed');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM (
				'draft',
				'pending_client_completion',
				'pending_admin_review',
				'ready_for_signature',
				'sent_to_docusign',
				'client_signed',
				'admin_signed',
				'fully_executed'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'pricing_category') THEN
			CREATE TYPE pricing_category AS ENUM ('guide fees', 'add-ons');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'add_on_type') THEN
			CREATE TYPE add_on_type AS ENUM ('extra_days', 'non_hunter', 'spotter', 'rifle_rental');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS pricing_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		outfitter_id UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		category pricing_category NOT NULL,
		add_on_type add_on_type,
		amount BIGINT NOT NULL,
		included_days INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS season_windows (
		hunt_code VARCHAR(64) PRIMARY KEY,
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS hunts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		outfitter_id UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		species VARCHAR(128) NOT NULL DEFAULT '',
		unit VARCHAR(64) NOT NULL DEFAULT '',
		weapon VARCHAR(64) NOT NULL DEFAULT '',
		start_at TIMESTAMPTZ,
		end_at TIMESTAMPTZ,
		hunt_code VARCHAR(64),
		window_start TIMESTAMPTZ,
		window_end TIMESTAMPTZ,
		private_land_tag_id UUID,
		client_email VARCHAR(255),
		tag_status tag_status NOT NULL DEFAULT 'pending',
		pricing_item_id UUID REFERENCES pricing_items(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS hunt_contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		outfitter_id UUID NOT NULL,
		hunt_id UUID REFERENCES hunts(id),
		client_email VARCHAR(255) NOT NULL,
		status contract_status NOT NULL DEFAULT 'pending_client_completion',
		content TEXT NOT NULL DEFAULT '',
		pricing_item_id UUID REFERENCES pricing_items(id),
		guide_fee_cents BIGINT NOT NULL DEFAULT 0,
		add_ons_cents BIGINT NOT NULL DEFAULT 0,
		total_cents BIGINT NOT NULL DEFAULT 0,
		completion JSONB NOT NULL DEFAULT '{}',
		client_completed_at TIMESTAMPTZ,
		client_signed_at TIMESTAMPTZ,
		admin_signed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_hunt_contracts_hunt_id ON hunt_contracts (hunt_id) WHERE hunt_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_hunt_contracts_outfitter_id ON hunt_contracts (outfitter_id);`,
	`CREATE INDEX IF NOT EXISTS idx_hunt_contracts_client_email ON hunt_contracts (LOWER(client_email));`,
	`CREATE INDEX IF NOT EXISTS idx_hunt_contracts_status ON hunt_contracts (status);`,
	`CREATE INDEX IF NOT EXISTS idx_hunts_outfitter_id ON hunts (outfitter_id);`,
	`CREATE INDEX IF NOT EXISTS idx_pricing_items_outfitter_id ON pricing_items (outfitter_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
