package models

import (
	"time"

	"github.com/google/uuid"
)

type QuotaStatus struct {
	OwnerID       uuid.UUID `json:"owner_id"`
	UsedToday     int       `json:"used_today"`
	DailyLimit    int       `json:"daily_limit"`
	LifetimeTotal int64     `json:"lifetime_total"`
	ResetAt       time.Time `json:"reset_at"`
}

// Remaining reports the headroom left in the current window.
func (q *QuotaStatus) Remaining() int {
	remaining := q.DailyLimit - q.UsedToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NextReset is the start of the next counting window.
func (q *QuotaStatus) NextReset() time.Time {
	return q.ResetAt.Add(24 * time.Hour)
}
