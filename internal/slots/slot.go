package slots

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a bookable time window on a given date.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Midnight truncates t to the start of its day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// TruncateToMinute strips seconds and sub-second precision from a requested
// start time before matching against stored slots.
func TruncateToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
