package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mkovac/postforge-api/internal/crypto"
	"github.com/mkovac/postforge-api/internal/database"
	"github.com/mkovac/postforge-api/internal/models"
)

var (
	ErrSecretNotFound   = errors.New("secret not found")
	ErrSecretEmptyName  = errors.New("secret name must not be empty")
	ErrSecretEmptyValue = errors.New("secret value must not be empty")

	// ErrDecryptionFailed means a stored ciphertext could not be opened
	// with the current key. Surfaced to the caller so the user gets an
	// actionable message instead of a generic server error.
	ErrDecryptionFailed = errors.New("stored secret could not be decrypted")

	// ErrStorageUnavailable wraps faults from the database itself, kept
	// distinct from the not-found and decryption conditions.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type SecretService struct {
	db  *database.DB
	key []byte
}

// NewSecretService creates a secret service bound to the process-wide
// encryption key. The key is never mutated at runtime.
func NewSecretService(db *database.DB, key []byte) *SecretService {
	return &SecretService{db: db, key: key}
}

// Put encrypts value and upserts the (owner, name) row. Writing an
// existing name replaces its ciphertext, never creates a duplicate.
func (s *SecretService) Put(ctx context.Context, ownerID uuid.UUID, name, value string) (*models.Secret, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrSecretEmptyName
	}
	if value == "" {
		return nil, ErrSecretEmptyValue
	}

	ciphertext, err := crypto.EncryptString(s.key, value)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}

	var secret models.Secret
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO user_secrets (owner_id, name, ciphertext, is_encrypted)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (owner_id, name) DO UPDATE
		SET ciphertext = EXCLUDED.ciphertext, is_encrypted = TRUE, updated_at = NOW()
		RETURNING id, owner_id, name, is_encrypted, created_at, updated_at
	`, ownerID, name, ciphertext).Scan(
		&secret.ID, &secret.OwnerID, &secret.Name, &secret.IsEncrypted,
		&secret.CreatedAt, &secret.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &secret, nil
}

// Get fetches and decrypts a single secret. Rows written before encryption
// was introduced (is_encrypted = FALSE) are returned verbatim.
func (s *SecretService) Get(ctx context.Context, ownerID uuid.UUID, name string) (string, error) {
	var (
		ciphertext  string
		isEncrypted bool
	)
	err := s.db.Pool.QueryRow(ctx, `
		SELECT ciphertext, is_encrypted
		FROM user_secrets
		WHERE owner_id = $1 AND name = $2
	`, ownerID, name).Scan(&ciphertext, &isEncrypted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if !isEncrypted {
		return ciphertext, nil
	}

	value, err := crypto.DecryptString(s.key, ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return value, nil
}

// List returns all of an owner's secrets, decrypted. Each row decrypts
// independently: a corrupted or wrong-key row is flagged and the rest of
// the listing still comes back.
func (s *SecretService) List(ctx context.Context, ownerID uuid.UUID) ([]models.SecretEntry, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT name, ciphertext, is_encrypted
		FROM user_secrets
		WHERE owner_id = $1
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var entries []models.SecretEntry
	for rows.Next() {
		var (
			name        string
			ciphertext  string
			isEncrypted bool
		)
		if err := rows.Scan(&name, &ciphertext, &isEncrypted); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		entry := models.SecretEntry{Name: name}
		if !isEncrypted {
			entry.Value = ciphertext
		} else if value, err := crypto.DecryptString(s.key, ciphertext); err != nil {
			entry.DecryptFailed = true
		} else {
			entry.Value = value
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return entries, nil
}

// Delete removes a secret. Deleting an absent name reports not-found; the
// caller may treat that as a no-op.
func (s *SecretService) Delete(ctx context.Context, ownerID uuid.UUID, name string) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM user_secrets WHERE owner_id = $1 AND name = $2
	`, ownerID, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if result.RowsAffected() == 0 {
		return ErrSecretNotFound
	}
	return nil
}
