package models

import (
	"time"

	"github.com/google/uuid"
)

type Secret struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Ciphertext  string    `json:"-"`
	IsEncrypted bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SecretEntry is a decrypted listing entry. DecryptFailed marks rows whose
// ciphertext could not be opened with the current key; the value is empty
// in that case and the rest of the listing is unaffected.
type SecretEntry struct {
	Name          string `json:"name"`
	Value         string `json:"value"`
	DecryptFailed bool   `json:"decrypt_failed"`
}
