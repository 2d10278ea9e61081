package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a confirmed booking against a slot. TrackingID is the
// short, store-assigned number patients quote over the phone; it is unique
// and sequential, never reused.
type Appointment struct {
	ID         uuid.UUID `json:"id"`
	TrackingID int64     `json:"tracking_id"`
	SlotID     uuid.UUID `json:"slot_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
