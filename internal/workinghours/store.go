package workinghours

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/doclinic/booking-platform/internal/storage"
)

// Store persists working hours in Postgres.
type Store struct {
	pool storage.Pool
}

// NewStore creates a working-hours store backed by a pgx pool.
func NewStore(pool storage.Pool) *Store {
	if pool == nil {
		panic("workinghours: pgx pool required")
	}
	return &Store{pool: pool}
}

func (s *Store) querier(q storage.Querier) storage.Querier {
	if q == nil {
		return s.pool
	}
	return q
}

const workingHourColumns = "id, weekday, open_time, close_time, created_at, updated_at"

// Insert stores a new working-hour entry.
func (s *Store) Insert(ctx context.Context, q storage.Querier, wh WorkingHour) (WorkingHour, error) {
	if err := wh.Validate(); err != nil {
		return WorkingHour{}, err
	}
	row := s.querier(q).QueryRow(ctx, `
		INSERT INTO working_hours (weekday, open_time, close_time)
		VALUES ($1, $2, $3)
		RETURNING `+workingHourColumns, wh.Weekday, wh.OpenTime, wh.CloseTime)
	stored, err := scanWorkingHour(row)
	if err != nil {
		return WorkingHour{}, fmt.Errorf("workinghours: insert: %w", err)
	}
	return stored, nil
}

// GetByID loads a single entry.
func (s *Store) GetByID(ctx context.Context, q storage.Querier, id uuid.UUID) (WorkingHour, error) {
	row := s.querier(q).QueryRow(ctx, `SELECT `+workingHourColumns+` FROM working_hours WHERE id = $1`, id)
	wh, err := scanWorkingHour(row)
	if err != nil {
		return WorkingHour{}, fmt.Errorf("workinghours: get by id: %w", err)
	}
	return wh, nil
}

// List returns all entries ordered by weekday.
func (s *Store) List(ctx context.Context, q storage.Querier) ([]WorkingHour, error) {
	rows, err := s.querier(q).Query(ctx, `
		SELECT `+workingHourColumns+`
		FROM working_hours
		ORDER BY weekday ASC, open_time ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("workinghours: list: %w", err)
	}
	defer rows.Close()

	var out []WorkingHour
	for rows.Next() {
		wh, err := scanWorkingHour(rows)
		if err != nil {
			return nil, fmt.Errorf("workinghours: list: %w", err)
		}
		out = append(out, wh)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("workinghours: list: %w", rows.Err())
	}
	return out, nil
}

// Update rewrites an entry.
func (s *Store) Update(ctx context.Context, q storage.Querier, wh WorkingHour) (WorkingHour, error) {
	if err := wh.Validate(); err != nil {
		return WorkingHour{}, err
	}
	row := s.querier(q).QueryRow(ctx, `
		UPDATE working_hours
		SET weekday = $2, open_time = $3, close_time = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+workingHourColumns, wh.ID, wh.Weekday, wh.OpenTime, wh.CloseTime)
	stored, err := scanWorkingHour(row)
	if err != nil {
		return WorkingHour{}, fmt.Errorf("workinghours: update: %w", err)
	}
	return stored, nil
}

// Delete removes an entry and reports whether a row was deleted.
func (s *Store) Delete(ctx context.Context, q storage.Querier, id uuid.UUID) (bool, error) {
	tag, err := s.querier(q).Exec(ctx, `DELETE FROM working_hours WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("workinghours: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanWorkingHour(row pgx.Row) (WorkingHour, error) {
	var wh WorkingHour
	err := row.Scan(
		&wh.ID,
		&wh.Weekday,
		&wh.OpenTime,
		&wh.CloseTime,
		&wh.CreatedAt,
		&wh.UpdatedAt,
	)
	if err != nil {
		return WorkingHour{}, err
	}
	return wh, nil
}
