package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS user_secrets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner_id UUID NOT NULL,
		name VARCHAR(100) NOT NULL,
		ciphertext TEXT NOT NULL,
		is_encrypted BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(owner_id, name)
	)`,

	// Databases created before encryption was introduced stored values as
	// plaintext and have no flag column. Those rows must keep reading as
	// plaintext, so the backfilled default is FALSE here.
	`ALTER TABLE user_secrets ADD COLUMN IF NOT EXISTS is_encrypted BOOLEAN NOT NULL DEFAULT FALSE`,

	`CREATE TABLE IF NOT EXISTS generation_quotas (
		owner_id UUID PRIMARY KEY,
		daily_limit INTEGER NOT NULL DEFAULT 50,
		used_today INTEGER NOT NULL DEFAULT 0,
		reset_at TIMESTAMP WITH TIME ZONE NOT NULL,
		lifetime_total BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`ALTER TABLE generation_quotas ADD COLUMN IF NOT EXISTS lifetime_total BIGINT NOT NULL DEFAULT 0`,

	`CREATE INDEX IF NOT EXISTS idx_user_secrets_owner_id ON user_secrets(owner_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
