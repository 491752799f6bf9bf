package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mkovac/postforge-api/internal/crypto"
	"github.com/mkovac/postforge-api/internal/services"
	"github.com/mkovac/postforge-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretService_Integration_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	svc := services.NewSecretService(tdb.DB, key)
	ctx := context.Background()

	ownerID := uuid.New()

	// Create
	secret, err := svc.Put(ctx, ownerID, "openai_api_key", "sk-original")
	require.NoError(t, err)
	assert.True(t, secret.IsEncrypted)

	value, err := svc.Get(ctx, ownerID, "openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-original", value)

	// Update in place
	_, err = svc.Put(ctx, ownerID, "openai_api_key", "sk-rotated")
	require.NoError(t, err)

	value, err = svc.Get(ctx, ownerID, "openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-rotated", value)

	entries, err := svc.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sk-rotated", entries[0].Value)

	// Delete
	err = svc.Delete(ctx, ownerID, "openai_api_key")
	require.NoError(t, err)

	_, err = svc.Get(ctx, ownerID, "openai_api_key")
	assert.ErrorIs(t, err, services.ErrSecretNotFound)

	err = svc.Delete(ctx, ownerID, "openai_api_key")
	assert.ErrorIs(t, err, services.ErrSecretNotFound)
}

func TestSecretService_Integration_StoredValueIsNotPlaintext(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	svc := services.NewSecretService(tdb.DB, key)
	ctx := context.Background()

	ownerA := uuid.New()
	ownerB := uuid.New()

	_, err = svc.Put(ctx, ownerA, "shared_name", "same-value")
	require.NoError(t, err)
	_, err = svc.Put(ctx, ownerB, "shared_name", "same-value")
	require.NoError(t, err)

	storedA := fixtures.StoredCiphertext(t, ownerA, "shared_name")
	storedB := fixtures.StoredCiphertext(t, ownerB, "shared_name")

	assert.NotEqual(t, "same-value", storedA)
	// Random nonces mean identical plaintexts never share a ciphertext.
	assert.NotEqual(t, storedA, storedB)
}

func TestSecretService_Integration_OwnersAreIsolated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	svc := services.NewSecretService(tdb.DB, key)
	ctx := context.Background()

	ownerA := uuid.New()
	ownerB := uuid.New()

	_, err = svc.Put(ctx, ownerA, "openai_api_key", "sk-owner-a")
	require.NoError(t, err)

	_, err = svc.Get(ctx, ownerB, "openai_api_key")
	assert.ErrorIs(t, err, services.ErrSecretNotFound)

	entries, err := svc.List(ctx, ownerB)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSecretService_Integration_LegacyPlaintextRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	svc := services.NewSecretService(tdb.DB, key)
	ctx := context.Background()

	ownerID := uuid.New()
	fixtures.SeedLegacySecret(t, ownerID, "legacy_key", "plain-old-value")

	// Legacy rows are returned verbatim, no decryption attempted.
	value, err := svc.Get(ctx, ownerID, "legacy_key")
	require.NoError(t, err)
	assert.Equal(t, "plain-old-value", value)

	// Re-saving upgrades the row to encrypted storage.
	_, err = svc.Put(ctx, ownerID, "legacy_key", "plain-old-value")
	require.NoError(t, err)

	stored := fixtures.StoredCiphertext(t, ownerID, "legacy_key")
	assert.NotEqual(t, "plain-old-value", stored)

	value, err = svc.Get(ctx, ownerID, "legacy_key")
	require.NoError(t, err)
	assert.Equal(t, "plain-old-value", value)
}

func TestSecretService_Integration_KeyChangeSurfacesDecryptionFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	ctx := context.Background()

	oldKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	newKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	ownerID := uuid.New()

	oldSvc := services.NewSecretService(tdb.DB, oldKey)
	_, err = oldSvc.Put(ctx, ownerID, "openai_api_key", "sk-under-old-key")
	require.NoError(t, err)

	newSvc := services.NewSecretService(tdb.DB, newKey)
	_, err = newSvc.Get(ctx, ownerID, "openai_api_key")
	assert.ErrorIs(t, err, services.ErrDecryptionFailed)

	// The row is flagged but still listed so the owner can re-save it.
	entries, err := newSvc.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].DecryptFailed)
}
