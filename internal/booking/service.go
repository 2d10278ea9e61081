package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/doclinic/booking-platform/internal/appointments"
	"github.com/doclinic/booking-platform/internal/observability/metrics"
	"github.com/doclinic/booking-platform/internal/slots"
	"github.com/doclinic/booking-platform/internal/storage"
	"github.com/doclinic/booking-platform/pkg/logging"
)

// Notifier sends patient-facing emails after a workflow commit. Failures are
// logged, never surfaced; delivery is best effort.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt appointments.Appointment, slot slots.Slot) error
	AppointmentCancelled(ctx context.Context, appt appointments.Appointment) error
	AppointmentRescheduled(ctx context.Context, appt appointments.Appointment, slot slots.Slot) error
}

// Service orchestrates the appointment lifecycle: NonExistent -> Booked ->
// (rescheduled, stays Booked on a new slot) -> Cancelled. Every multi-step
// mutation runs inside one transaction; the store's row locks are the only
// concurrency-correctness mechanism.
type Service struct {
	pool     storage.Pool
	slots    *slots.Store
	appts    *appointments.Store
	resolver *Resolver
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewService constructs the booking workflow service. notifier and m may be
// nil.
func NewService(pool storage.Pool, slotStore *slots.Store, apptStore *appointments.Store, resolver *Resolver, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if pool == nil {
		panic("booking: pool required")
	}
	if slotStore == nil || apptStore == nil || resolver == nil {
		panic("booking: stores and resolver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		pool:     pool,
		slots:    slotStore,
		appts:    apptStore,
		resolver: resolver,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// BookRequest carries everything needed to create an appointment.
type BookRequest struct {
	Date      time.Time
	StartTime time.Time
	// EndTime is optional.
	EndTime time.Time
	Name    string
	Email   string
}

// Book finds or creates a slot for the requested time, reserves it, and
// creates the appointment, all in one transaction. The confirmation email is
// sent after commit and cannot fail the booking.
func (s *Service) Book(ctx context.Context, req BookRequest) (appointments.Appointment, error) {
	if req.Name == "" || req.Email == "" || req.Date.IsZero() || req.StartTime.IsZero() {
		s.observe("book", "invalid_input")
		return appointments.Appointment{}, fmt.Errorf("%w: name, email, date and start time are required", ErrInvalidInput)
	}

	var (
		appt appointments.Appointment
		slot slots.Slot
	)
	err := storage.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		resolved, err := s.resolver.Resolve(ctx, tx, ResolveRequest{
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		if err != nil {
			return err
		}
		slot = resolved.Slot

		appt, err = s.appts.Insert(ctx, tx, slot.ID, req.Name, req.Email)
		if err != nil {
			return err
		}

		// Newly created slots are persisted already reserved; only a
		// reused slot needs its flag flipped.
		if !resolved.IsNew {
			updated, err := s.slots.SetAvailability(ctx, tx, slot.ID, false)
			if err != nil {
				return err
			}
			if !updated {
				return fmt.Errorf("booking: slot %s vanished while booking", slot.ID)
			}
		}
		slot.IsAvailable = false
		return nil
	})
	if err != nil {
		s.observe("book", outcomeLabel(err))
		return appointments.Appointment{}, err
	}

	s.observe("book", "success")
	s.logger.Info("appointment booked",
		"tracking_id", appt.TrackingID,
		"slot_id", slot.ID,
		"start_time", slot.StartTime,
	)
	s.sendBooked(ctx, appt, slot)
	return appt, nil
}

// Cancel deletes the appointment matching the tracking id/email pair and
// releases its slot in the same transaction. Returns a snapshot of the
// deleted appointment.
func (s *Service) Cancel(ctx context.Context, trackingID int64, email string) (appointments.Appointment, error) {
	if trackingID == 0 || email == "" {
		s.observe("cancel", "invalid_input")
		return appointments.Appointment{}, fmt.Errorf("%w: tracking id and email are required", ErrInvalidInput)
	}

	var appt appointments.Appointment
	err := storage.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		appt, err = s.appts.GetByTrackingIDAndEmailForUpdate(ctx, tx, trackingID, email)
		if err != nil {
			if storage.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}

		deleted, err := s.appts.Delete(ctx, tx, appt.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}

		updated, err := s.slots.SetAvailability(ctx, tx, appt.SlotID, true)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("booking: slot %s missing while cancelling", appt.SlotID)
		}
		return nil
	})
	if err != nil {
		s.observe("cancel", outcomeLabel(err))
		return appointments.Appointment{}, err
	}

	s.observe("cancel", "success")
	s.logger.Info("appointment cancelled", "tracking_id", appt.TrackingID, "slot_id", appt.SlotID)
	s.sendCancelled(ctx, appt)
	return appt, nil
}

// Reschedule moves the appointment matching the tracking id/email pair to a
// new slot: the new slot is reserved, the old one released, and the
// appointment repointed, all in one transaction. Rescheduling onto the slot
// the appointment already occupies is a no-op success.
func (s *Service) Reschedule(ctx context.Context, trackingID int64, email string, date, startTime time.Time) (appointments.Appointment, error) {
	if trackingID == 0 || email == "" || date.IsZero() || startTime.IsZero() {
		s.observe("reschedule", "invalid_input")
		return appointments.Appointment{}, fmt.Errorf("%w: tracking id, email, date and time are required", ErrInvalidInput)
	}

	var (
		appt  appointments.Appointment
		slot  slots.Slot
		moved bool
	)
	err := storage.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		appt, err = s.appts.GetByTrackingIDAndEmailForUpdate(ctx, tx, trackingID, email)
		if err != nil {
			if storage.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		oldSlotID := appt.SlotID

		resolved, err := s.resolver.Resolve(ctx, tx, ResolveRequest{Date: date, StartTime: startTime})
		if err != nil {
			if errors.Is(err, ErrSlotUnavailable) {
				// The requested time may resolve to the very slot this
				// appointment occupies; that is a no-op success, not a
				// conflict.
				current, lookupErr := s.slots.GetByID(ctx, tx, oldSlotID)
				if lookupErr == nil && sameSlotTime(current, date, startTime, s.resolver.tolerance) {
					slot = current
					return nil
				}
			}
			return err
		}
		slot = resolved.Slot

		if slot.ID == oldSlotID {
			return nil
		}

		if !resolved.IsNew {
			updated, err := s.slots.SetAvailability(ctx, tx, slot.ID, false)
			if err != nil {
				return err
			}
			if !updated {
				return fmt.Errorf("booking: slot %s vanished while rescheduling", slot.ID)
			}
		}
		slot.IsAvailable = false

		updated, err := s.slots.SetAvailability(ctx, tx, oldSlotID, true)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("booking: slot %s missing while rescheduling", oldSlotID)
		}

		appt, err = s.appts.UpdateSlot(ctx, tx, appt.ID, slot.ID)
		if err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		s.observe("reschedule", outcomeLabel(err))
		return appointments.Appointment{}, err
	}

	s.observe("reschedule", "success")
	s.logger.Info("appointment rescheduled",
		"tracking_id", appt.TrackingID,
		"slot_id", appt.SlotID,
		"moved", moved,
	)
	if moved {
		s.sendRescheduled(ctx, appt, slot)
	}
	return appt, nil
}

// sameSlotTime reports whether slot covers the requested date/time within
// the resolver's matching window.
func sameSlotTime(slot slots.Slot, date, startTime time.Time, tolerance time.Duration) bool {
	if !slots.Midnight(slot.Date).Equal(slots.Midnight(date)) {
		return false
	}
	start := slots.TruncateToMinute(startTime)
	return !slot.StartTime.Before(start) && !slot.StartTime.After(start.Add(tolerance))
}

func (s *Service) sendBooked(ctx context.Context, appt appointments.Appointment, slot slots.Slot) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AppointmentBooked(ctx, appt, slot); err != nil {
		s.metrics.ObserveEmail("booked", "failed")
		s.logger.Error("booking confirmation email failed", "tracking_id", appt.TrackingID, "error", err)
		return
	}
	s.metrics.ObserveEmail("booked", "sent")
}

func (s *Service) sendCancelled(ctx context.Context, appt appointments.Appointment) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AppointmentCancelled(ctx, appt); err != nil {
		s.metrics.ObserveEmail("cancelled", "failed")
		s.logger.Error("cancellation email failed", "tracking_id", appt.TrackingID, "error", err)
		return
	}
	s.metrics.ObserveEmail("cancelled", "sent")
}

func (s *Service) sendRescheduled(ctx context.Context, appt appointments.Appointment, slot slots.Slot) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AppointmentRescheduled(ctx, appt, slot); err != nil {
		s.metrics.ObserveEmail("rescheduled", "failed")
		s.logger.Error("reschedule email failed", "tracking_id", appt.TrackingID, "error", err)
		return
	}
	s.metrics.ObserveEmail("rescheduled", "sent")
}

func (s *Service) observe(op, outcome string) {
	s.metrics.ObserveOperation(op, outcome)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
