package dto

type ConsumeQuotaRequest struct {
	Amount int `json:"amount,omitempty"`
}

type QuotaResponse struct {
	UsedToday     int    `json:"used_today"`
	DailyLimit    int    `json:"daily_limit"`
	Remaining     int    `json:"remaining"`
	LifetimeTotal int64  `json:"lifetime_total"`
	ResetAt       string `json:"reset_at"`
}

type QuotaExceededResponse struct {
	Error             string `json:"error"`
	UsedToday         int    `json:"used_today"`
	DailyLimit        int    `json:"daily_limit"`
	RetryAfterSeconds int64  `json:"retry_after_seconds"`
}

type SetQuotaLimitRequest struct {
	DailyLimit int `json:"daily_limit"`
}
