package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/doclinic/booking-platform/internal/storage"
)

// Store persists slots in Postgres.
type Store struct {
	pool storage.Pool
}

// NewStore creates a slot store backed by a pgx pool.
func NewStore(pool storage.Pool) *Store {
	if pool == nil {
		panic("slots: pgx pool required")
	}
	return &Store{pool: pool}
}

func (s *Store) querier(q storage.Querier) storage.Querier {
	if q == nil {
		return s.pool
	}
	return q
}

const slotColumns = "id, date, start_time, end_time, is_available, created_at, updated_at"

// Insert stores a new slot and returns the persisted row.
func (s *Store) Insert(ctx context.Context, q storage.Querier, slot Slot) (Slot, error) {
	if !slot.StartTime.Before(slot.EndTime) {
		return Slot{}, fmt.Errorf("slots: start time %s is not before end time %s", slot.StartTime, slot.EndTime)
	}
	query := `
		INSERT INTO slots (date, start_time, end_time, is_available)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + slotColumns
	row := s.querier(q).QueryRow(ctx, query, Midnight(slot.Date), slot.StartTime, slot.EndTime, slot.IsAvailable)
	stored, err := scanSlot(row)
	if err != nil {
		return Slot{}, fmt.Errorf("slots: insert: %w", err)
	}
	return stored, nil
}

// GetByID loads a single slot.
func (s *Store) GetByID(ctx context.Context, q storage.Querier, id uuid.UUID) (Slot, error) {
	row := s.querier(q).QueryRow(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = $1`, id)
	slot, err := scanSlot(row)
	if err != nil {
		return Slot{}, fmt.Errorf("slots: get by id: %w", err)
	}
	return slot, nil
}

// ListByDateRange returns slots whose date falls within [from, to], ordered
// by start time.
func (s *Store) ListByDateRange(ctx context.Context, q storage.Querier, from, to time.Time) ([]Slot, error) {
	rows, err := s.querier(q).Query(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE date >= $1 AND date <= $2
		ORDER BY start_time ASC
	`, Midnight(from), Midnight(to))
	if err != nil {
		return nil, fmt.Errorf("slots: list by date range: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("slots: list by date range: %w", err)
		}
		out = append(out, slot)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("slots: list by date range: %w", rows.Err())
	}
	return out, nil
}

// FindByDateAndTime returns the first slot on date whose start time falls in
// [start, start+tolerance]. The requested start is truncated to the minute
// before matching.
func (s *Store) FindByDateAndTime(ctx context.Context, q storage.Querier, date, start time.Time, tolerance time.Duration) (Slot, error) {
	return s.findByDateAndTime(ctx, q, date, start, tolerance, false)
}

// FindByDateAndTimeForUpdate is FindByDateAndTime with a row-level lock. The
// booking workflow uses it inside a transaction so availability cannot change
// between the check and the final write.
func (s *Store) FindByDateAndTimeForUpdate(ctx context.Context, q storage.Querier, date, start time.Time, tolerance time.Duration) (Slot, error) {
	return s.findByDateAndTime(ctx, q, date, start, tolerance, true)
}

func (s *Store) findByDateAndTime(ctx context.Context, q storage.Querier, date, start time.Time, tolerance time.Duration, forUpdate bool) (Slot, error) {
	start = TruncateToMinute(start)
	till := start.Add(tolerance)
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE date = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time ASC
		LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	row := s.querier(q).QueryRow(ctx, query, Midnight(date), start, till)
	slot, err := scanSlot(row)
	if err != nil {
		return Slot{}, fmt.Errorf("slots: find by date and time: %w", err)
	}
	return slot, nil
}

// SetAvailability flips the availability flag and reports whether a row was
// updated.
func (s *Store) SetAvailability(ctx context.Context, q storage.Querier, id uuid.UUID, available bool) (bool, error) {
	tag, err := s.querier(q).Exec(ctx, `
		UPDATE slots
		SET is_available = $2, updated_at = now()
		WHERE id = $1
	`, id, available)
	if err != nil {
		return false, fmt.Errorf("slots: set availability: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Update rewrites a slot's window and availability. Admin CRUD only; the
// booking workflow never calls this.
func (s *Store) Update(ctx context.Context, q storage.Querier, slot Slot) (Slot, error) {
	if !slot.StartTime.Before(slot.EndTime) {
		return Slot{}, fmt.Errorf("slots: start time %s is not before end time %s", slot.StartTime, slot.EndTime)
	}
	row := s.querier(q).QueryRow(ctx, `
		UPDATE slots
		SET date = $2, start_time = $3, end_time = $4, is_available = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+slotColumns, slot.ID, Midnight(slot.Date), slot.StartTime, slot.EndTime, slot.IsAvailable)
	stored, err := scanSlot(row)
	if err != nil {
		return Slot{}, fmt.Errorf("slots: update: %w", err)
	}
	return stored, nil
}

// Delete removes a slot and reports whether a row was deleted. Admin CRUD
// only.
func (s *Store) Delete(ctx context.Context, q storage.Querier, id uuid.UUID) (bool, error) {
	tag, err := s.querier(q).Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("slots: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSlot(row pgx.Row) (Slot, error) {
	var slot Slot
	err := row.Scan(
		&slot.ID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAvailable,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return Slot{}, err
	}
	return slot, nil
}
