package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuotaRecord is the per-user, per-day counter of billed AI invocations.
// Keyed by (UserID, UsageDate); Count never exceeds the configured daily
// limit after a successful increment. Expired records are removed by the
// retention sweeper after the retention window.
type QuotaRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	UsageDate time.Time `json:"usage_date"` // calendar date, time component zero
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsageDay truncates a timestamp to its UTC calendar date, the bucket key
// used by the quota ledger and the usage audit log.
func UsageDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
