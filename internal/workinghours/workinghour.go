package workinghours

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkingHour is one weekday's opening window. It is administrative
// configuration surfaced to UIs; the booking workflow does not consult it.
type WorkingHour struct {
	ID        uuid.UUID `json:"id"`
	Weekday   int       `json:"weekday"`
	OpenTime  string    `json:"open_time"`
	CloseTime string    `json:"close_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the weekday range and that the window is a well-formed,
// non-empty HH:MM interval.
func (wh WorkingHour) Validate() error {
	if wh.Weekday < 0 || wh.Weekday > 6 {
		return fmt.Errorf("workinghours: weekday %d out of range 0..6", wh.Weekday)
	}
	open, err := time.Parse("15:04", wh.OpenTime)
	if err != nil {
		return fmt.Errorf("workinghours: open_time %q is not HH:MM", wh.OpenTime)
	}
	closeAt, err := time.Parse("15:04", wh.CloseTime)
	if err != nil {
		return fmt.Errorf("workinghours: close_time %q is not HH:MM", wh.CloseTime)
	}
	if !open.Before(closeAt) {
		return fmt.Errorf("workinghours: open_time %s must be before close_time %s", wh.OpenTime, wh.CloseTime)
	}
	return nil
}
