package appointments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/doclinic/booking-platform/internal/storage"
)

// Store persists appointments in Postgres.
type Store struct {
	pool storage.Pool
}

// NewStore creates an appointment store backed by a pgx pool.
func NewStore(pool storage.Pool) *Store {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Store{pool: pool}
}

func (s *Store) querier(q storage.Querier) storage.Querier {
	if q == nil {
		return s.pool
	}
	return q
}

const appointmentColumns = "id, tracking_id, slot_id, name, email, created_at, updated_at"

// Insert creates an appointment against a slot. The tracking id is assigned
// by the database from an identity column.
func (s *Store) Insert(ctx context.Context, q storage.Querier, slotID uuid.UUID, name, email string) (Appointment, error) {
	row := s.querier(q).QueryRow(ctx, `
		INSERT INTO appointments (slot_id, name, email)
		VALUES ($1, $2, $3)
		RETURNING `+appointmentColumns, slotID, name, strings.ToLower(strings.TrimSpace(email)))
	appt, err := scanAppointment(row)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: insert: %w", err)
	}
	return appt, nil
}

// GetByID loads a single appointment.
func (s *Store) GetByID(ctx context.Context, q storage.Querier, id uuid.UUID) (Appointment, error) {
	row := s.querier(q).QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: get by id: %w", err)
	}
	return appt, nil
}

// GetByTrackingIDAndEmail looks an appointment up by the exact pair a patient
// quotes over the phone. Email comparison is case-insensitive.
func (s *Store) GetByTrackingIDAndEmail(ctx context.Context, q storage.Querier, trackingID int64, email string) (Appointment, error) {
	return s.getByTrackingIDAndEmail(ctx, q, trackingID, email, false)
}

// GetByTrackingIDAndEmailForUpdate locks the row for the duration of the
// surrounding transaction; cancel and reschedule use it so the appointment
// cannot change underneath them.
func (s *Store) GetByTrackingIDAndEmailForUpdate(ctx context.Context, q storage.Querier, trackingID int64, email string) (Appointment, error) {
	return s.getByTrackingIDAndEmail(ctx, q, trackingID, email, true)
}

func (s *Store) getByTrackingIDAndEmail(ctx context.Context, q storage.Querier, trackingID int64, email string, forUpdate bool) (Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tracking_id = $1 AND lower(email) = lower($2)`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	row := s.querier(q).QueryRow(ctx, query, trackingID, strings.TrimSpace(email))
	appt, err := scanAppointment(row)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: get by tracking id: %w", err)
	}
	return appt, nil
}

// UpdateSlot repoints an appointment at a new slot.
func (s *Store) UpdateSlot(ctx context.Context, q storage.Querier, id, slotID uuid.UUID) (Appointment, error) {
	row := s.querier(q).QueryRow(ctx, `
		UPDATE appointments
		SET slot_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, slotID)
	appt, err := scanAppointment(row)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: update slot: %w", err)
	}
	return appt, nil
}

// Update rewrites patient details and the slot reference. Admin CRUD only.
func (s *Store) Update(ctx context.Context, q storage.Querier, appt Appointment) (Appointment, error) {
	row := s.querier(q).QueryRow(ctx, `
		UPDATE appointments
		SET slot_id = $2, name = $3, email = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, appt.ID, appt.SlotID, appt.Name, strings.ToLower(strings.TrimSpace(appt.Email)))
	stored, err := scanAppointment(row)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: update: %w", err)
	}
	return stored, nil
}

// Delete removes an appointment and reports whether a row was deleted.
func (s *Store) Delete(ctx context.Context, q storage.Querier, id uuid.UUID) (bool, error) {
	tag, err := s.querier(q).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("appointments: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns appointments newest first for the admin UI.
func (s *Store) List(ctx context.Context, q storage.Querier, limit int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.querier(q).Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: list: %w", err)
		}
		out = append(out, appt)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("appointments: list: %w", rows.Err())
	}
	return out, nil
}

func scanAppointment(row pgx.Row) (Appointment, error) {
	var appt Appointment
	err := row.Scan(
		&appt.ID,
		&appt.TrackingID,
		&appt.SlotID,
		&appt.Name,
		&appt.Email,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return Appointment{}, err
	}
	return appt, nil
}
