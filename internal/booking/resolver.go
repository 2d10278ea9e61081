package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doclinic/booking-platform/internal/slots"
	"github.com/doclinic/booking-platform/internal/storage"
)

// ResolveRequest names the slot a caller wants. Exactly one shape is valid:
// Date together with StartTime. An explicit SlotID is rejected; callers that
// hold a slot id look the slot up and pass its date and start time instead.
type ResolveRequest struct {
	SlotID    *uuid.UUID
	Date      time.Time
	StartTime time.Time
	// EndTime is optional; a zero value falls back to the configured
	// default duration.
	EndTime time.Time
}

// Resolved is the slot a caller may attach an appointment to. When IsNew is
// false the caller still owns flipping the availability flag inside the same
// transaction; newly created slots are persisted already reserved.
type Resolved struct {
	Slot  slots.Slot
	IsNew bool
}

// Resolver maps a requested date/time to a single bookable slot, creating
// one on demand. It never mutates pre-existing slots.
type Resolver struct {
	slots           *slots.Store
	tolerance       time.Duration
	defaultDuration time.Duration
}

// NewResolver creates a resolver. tolerance is the window within which an
// existing slot matches a requested start time; defaultDuration sizes slots
// created without an explicit end time.
func NewResolver(store *slots.Store, tolerance, defaultDuration time.Duration) *Resolver {
	if store == nil {
		panic("booking: slot store required")
	}
	if tolerance <= 0 {
		tolerance = 10 * time.Minute
	}
	if defaultDuration <= 0 {
		defaultDuration = time.Hour
	}
	return &Resolver{
		slots:           store,
		tolerance:       tolerance,
		defaultDuration: defaultDuration,
	}
}

// Resolve finds or creates the slot for req. It must run on a
// transaction-scoped querier: the matching read takes a row lock so the
// availability check holds until the surrounding transaction commits.
func (r *Resolver) Resolve(ctx context.Context, q storage.Querier, req ResolveRequest) (Resolved, error) {
	if req.SlotID != nil {
		return Resolved{}, fmt.Errorf("%w: book by date and start time, not slot id", ErrInvalidInput)
	}
	if req.Date.IsZero() || req.StartTime.IsZero() {
		return Resolved{}, fmt.Errorf("%w: date and start time are both required", ErrInvalidInput)
	}

	date := slots.Midnight(req.Date)
	start := slots.TruncateToMinute(req.StartTime)

	existing, err := r.slots.FindByDateAndTimeForUpdate(ctx, q, date, start, r.tolerance)
	switch {
	case err == nil:
		if !existing.IsAvailable {
			return Resolved{}, ErrSlotUnavailable
		}
		return Resolved{Slot: existing}, nil
	case storage.IsNotFound(err):
		// fall through to create
	default:
		return Resolved{}, err
	}

	end := req.EndTime
	if end.IsZero() {
		end = start.Add(r.defaultDuration)
	}

	// Creation only happens in service of an immediate booking, so the new
	// slot is born reserved.
	created, err := r.slots.Insert(ctx, q, slots.Slot{
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: false,
	})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			// A concurrent transaction created the same slot first.
			return Resolved{}, ErrSlotUnavailable
		}
		return Resolved{}, err
	}
	return Resolved{Slot: created, IsNew: true}, nil
}
