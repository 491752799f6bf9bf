package dto

type PutSecretRequest struct {
	Value string `json:"value"`
}

type SecretResponse struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type SecretValueResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SecretEntryResponse struct {
	Name          string `json:"name"`
	Value         string `json:"value"`
	DecryptFailed bool   `json:"decrypt_failed"`
}

type SecretListResponse struct {
	Secrets []SecretEntryResponse `json:"secrets"`
}
