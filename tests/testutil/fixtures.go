package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkovac/postforge-api/internal/database"
)

// Fixtures seeds rows directly, bypassing the services, for scenarios that
// need pre-existing state (legacy plaintext rows, stale quota windows).
type Fixtures struct {
	db *database.DB
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// SeedLegacySecret inserts a pre-encryption plaintext row.
func (f *Fixtures) SeedLegacySecret(t *testing.T, ownerID uuid.UUID, name, value string) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO user_secrets (owner_id, name, ciphertext, is_encrypted)
		VALUES ($1, $2, $3, FALSE)
	`, ownerID, name, value)
	if err != nil {
		t.Fatalf("failed to seed legacy secret: %v", err)
	}
}

// StoredCiphertext reads the raw stored value for a secret.
func (f *Fixtures) StoredCiphertext(t *testing.T, ownerID uuid.UUID, name string) string {
	t.Helper()
	var ciphertext string
	err := f.db.Pool.QueryRow(context.Background(), `
		SELECT ciphertext FROM user_secrets WHERE owner_id = $1 AND name = $2
	`, ownerID, name).Scan(&ciphertext)
	if err != nil {
		t.Fatalf("failed to read stored ciphertext: %v", err)
	}
	return ciphertext
}

// AgeQuotaWindow moves an owner's reset_at into the past to simulate a
// record left over from a previous day.
func (f *Fixtures) AgeQuotaWindow(t *testing.T, ownerID uuid.UUID, resetAt time.Time) {
	t.Helper()
	result, err := f.db.Pool.Exec(context.Background(), `
		UPDATE generation_quotas SET reset_at = $2 WHERE owner_id = $1
	`, ownerID, resetAt)
	if err != nil {
		t.Fatalf("failed to age quota window: %v", err)
	}
	if result.RowsAffected() == 0 {
		t.Fatalf("no quota record for owner %s", ownerID)
	}
}
