package slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/doclinic/booking-platform/internal/storage"
)

func slotRows(slot Slot) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "date", "start_time", "end_time", "is_available", "created_at", "updated_at"}).
		AddRow(slot.ID, slot.Date, slot.StartTime, slot.EndTime, slot.IsAvailable, slot.CreatedAt, slot.UpdatedAt)
}

func testSlot() Slot {
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	return Slot{
		ID:          uuid.New(),
		Date:        date,
		StartTime:   date.Add(10 * time.Hour),
		EndTime:     date.Add(11 * time.Hour),
		IsAvailable: true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestStoreInsertNormalizesDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	slot := testSlot()

	// Date carries a time-of-day component; the store must insert midnight.
	noisy := slot
	noisy.Date = slot.Date.Add(13 * time.Hour)

	mock.ExpectQuery("INSERT INTO slots").
		WithArgs(slot.Date, slot.StartTime, slot.EndTime, true).
		WillReturnRows(slotRows(slot))

	stored, err := store.Insert(context.Background(), nil, noisy)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if stored.ID != slot.ID {
		t.Fatalf("unexpected stored slot: %+v", stored)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreInsertRejectsInvertedWindow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	slot := testSlot()
	slot.StartTime, slot.EndTime = slot.EndTime, slot.StartTime

	if _, err := store.Insert(context.Background(), nil, slot); err == nil {
		t.Fatal("expected error for start >= end")
	}
}

func TestStoreFindByDateAndTimeTruncatesAndBounds(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	slot := testSlot()

	// Requested start carries seconds; the query window must be
	// [10:00, 10:10] on the slot's date.
	requested := slot.StartTime.Add(42 * time.Second)
	mock.ExpectQuery("SELECT id, date, start_time, end_time, is_available, created_at, updated_at\\s+FROM slots").
		WithArgs(slot.Date, slot.StartTime, slot.StartTime.Add(10*time.Minute)).
		WillReturnRows(slotRows(slot))

	found, err := store.FindByDateAndTime(context.Background(), nil, slot.Date, requested, 10*time.Minute)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != slot.ID {
		t.Fatalf("unexpected slot: %+v", found)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreFindByDateAndTimeNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	slot := testSlot()

	mock.ExpectQuery("SELECT id, date, start_time").
		WithArgs(slot.Date, slot.StartTime, slot.StartTime.Add(10*time.Minute)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start_time", "end_time", "is_available", "created_at", "updated_at"}))

	_, err = store.FindByDateAndTime(context.Background(), nil, slot.Date, slot.StartTime, 10*time.Minute)
	if !storage.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestStoreSetAvailability(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE slots").
		WithArgs(id, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := store.SetAvailability(context.Background(), nil, id, false)
	if err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if !updated {
		t.Fatal("expected a row to be updated")
	}

	mock.ExpectExec("UPDATE slots").
		WithArgs(id, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err = store.SetAvailability(context.Background(), nil, id, true)
	if err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if updated {
		t.Fatal("expected no row to be updated")
	}
}

func TestStoreListByDateRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	slot := testSlot()

	mock.ExpectQuery("SELECT id, date, start_time").
		WithArgs(slot.Date, slot.Date.AddDate(0, 0, 1)).
		WillReturnRows(slotRows(slot))

	listed, err := store.ListByDateRange(context.Background(), nil, slot.Date, slot.Date.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != slot.ID {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}

func TestStoreDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM slots").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := store.Delete(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report success")
	}
}
