// Command rotate-key re-encrypts all stored secrets with a new key. Run it
// offline with the service stopped: SECRETS_ENCRYPTION_KEY must hold the
// new key and SECRETS_ENCRYPTION_KEY_OLD the key the rows were written
// with. Legacy plaintext rows are picked up and encrypted as well.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/mkovac/postforge-api/internal/config"
	"github.com/mkovac/postforge-api/internal/crypto"
	"github.com/mkovac/postforge-api/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	oldKeyEnc := os.Getenv("SECRETS_ENCRYPTION_KEY_OLD")
	if oldKeyEnc == "" {
		fmt.Println("Usage: set SECRETS_ENCRYPTION_KEY_OLD to the previous key and SECRETS_ENCRYPTION_KEY to the new one")
		os.Exit(1)
	}
	oldKey, err := crypto.DecodeKey(oldKeyEnc)
	if err != nil {
		log.Fatalf("Invalid SECRETS_ENCRYPTION_KEY_OLD: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, ciphertext, is_encrypted FROM user_secrets
	`)
	if err != nil {
		log.Fatalf("Failed to list secrets: %v", err)
	}

	type row struct {
		id          uuid.UUID
		ciphertext  string
		isEncrypted bool
	}
	var secrets []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.ciphertext, &r.isEncrypted); err != nil {
			log.Fatalf("Failed to scan secret: %v", err)
		}
		secrets = append(secrets, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to list secrets: %v", err)
	}

	var rotated, skipped int
	for _, r := range secrets {
		plaintext := r.ciphertext
		if r.isEncrypted {
			plaintext, err = crypto.DecryptString(oldKey, r.ciphertext)
			if errors.Is(err, crypto.ErrDecryptionFailed) || errors.Is(err, crypto.ErrInvalidCiphertext) {
				log.Printf("Skipping %s: not readable with the old key", r.id)
				skipped++
				continue
			}
			if err != nil {
				log.Fatalf("Failed to decrypt %s: %v", r.id, err)
			}
		}

		ciphertext, err := crypto.EncryptString(cfg.SecretsKey, plaintext)
		if err != nil {
			log.Fatalf("Failed to re-encrypt %s: %v", r.id, err)
		}

		_, err = db.Pool.Exec(ctx, `
			UPDATE user_secrets SET ciphertext = $1, is_encrypted = TRUE, updated_at = NOW()
			WHERE id = $2
		`, ciphertext, r.id)
		if err != nil {
			log.Fatalf("Failed to update %s: %v", r.id, err)
		}
		rotated++
	}

	fmt.Printf("Rotated %d secrets, skipped %d\n", rotated, skipped)
}
