package notify

import (
	"context"
	"fmt"

	"github.com/doclinic/booking-platform/internal/appointments"
	"github.com/doclinic/booking-platform/internal/slots"
	"github.com/doclinic/booking-platform/pkg/logging"
)

// Service formats and sends booking lifecycle emails to patients. Delivery is
// best effort: the caller logs failures and moves on.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a booking notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// AppointmentBooked sends the confirmation email with the tracking number the
// patient quotes to cancel or reschedule.
func (s *Service) AppointmentBooked(ctx context.Context, appt appointments.Appointment, slot slots.Slot) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping confirmation")
		return nil
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment is confirmed for %s, from %s to %s.\n\nYour tracking number is %d. Keep it handy along with this email address if you need to cancel or reschedule.\n\nSee you soon,\nDoClinic",
		appt.Name,
		slot.StartTime.Format("Monday, January 2 2006"),
		slot.StartTime.Format("3:04 PM"),
		slot.EndTime.Format("3:04 PM"),
		appt.TrackingID,
	)

	err := s.email.Send(ctx, EmailMessage{
		To:      appt.Email,
		ToName:  appt.Name,
		Subject: "Your appointment is confirmed",
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}

// AppointmentCancelled confirms a cancellation.
func (s *Service) AppointmentCancelled(ctx context.Context, appt appointments.Appointment) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping cancellation email")
		return nil
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment with tracking number %d has been cancelled. The time slot is available again for other patients.\n\nIf this was a mistake you are welcome to book again.\n\nDoClinic",
		appt.Name,
		appt.TrackingID,
	)

	err := s.email.Send(ctx, EmailMessage{
		To:      appt.Email,
		ToName:  appt.Name,
		Subject: "Your appointment has been cancelled",
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("notify: cancellation email: %w", err)
	}
	return nil
}

// AppointmentRescheduled confirms the new time. The tracking number does not
// change on a reschedule.
func (s *Service) AppointmentRescheduled(ctx context.Context, appt appointments.Appointment, slot slots.Slot) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping reschedule email")
		return nil
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment has been moved to %s, from %s to %s.\n\nYour tracking number is still %d.\n\nSee you soon,\nDoClinic",
		appt.Name,
		slot.StartTime.Format("Monday, January 2 2006"),
		slot.StartTime.Format("3:04 PM"),
		slot.EndTime.Format("3:04 PM"),
		appt.TrackingID,
	)

	err := s.email.Send(ctx, EmailMessage{
		To:      appt.Email,
		ToName:  appt.Name,
		Subject: "Your appointment has been rescheduled",
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("notify: reschedule email: %w", err)
	}
	return nil
}
