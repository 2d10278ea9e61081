package workinghours

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
)

var workingHourCols = []string{"id", "weekday", "open_time", "close_time", "created_at", "updated_at"}

func newStoreFixture(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		wh      WorkingHour
		problem string
	}{
		{"valid", WorkingHour{Weekday: 1, OpenTime: "09:00", CloseTime: "17:00"}, ""},
		{"weekday too high", WorkingHour{Weekday: 7, OpenTime: "09:00", CloseTime: "17:00"}, "out of range"},
		{"weekday negative", WorkingHour{Weekday: -1, OpenTime: "09:00", CloseTime: "17:00"}, "out of range"},
		{"bad open format", WorkingHour{Weekday: 1, OpenTime: "9am", CloseTime: "17:00"}, "not HH:MM"},
		{"bad close format", WorkingHour{Weekday: 1, OpenTime: "09:00", CloseTime: "25:00"}, "not HH:MM"},
		{"inverted window", WorkingHour{Weekday: 1, OpenTime: "17:00", CloseTime: "09:00"}, "must be before"},
		{"empty window", WorkingHour{Weekday: 1, OpenTime: "09:00", CloseTime: "09:00"}, "must be before"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.wh.Validate()
			if tc.problem == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.problem) {
				t.Fatalf("expected error containing %q, got %v", tc.problem, err)
			}
		})
	}
}

func TestInsert(t *testing.T) {
	mock, store := newStoreFixture(t)

	id := uuid.New()
	mock.ExpectQuery(`INSERT INTO working_hours`).
		WithArgs(1, "09:00", "17:00").
		WillReturnRows(pgxmock.NewRows(workingHourCols).
			AddRow(id, 1, "09:00", "17:00", time.Now(), time.Now()))

	wh, err := store.Insert(context.Background(), nil, WorkingHour{Weekday: 1, OpenTime: "09:00", CloseTime: "17:00"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if wh.ID != id {
		t.Fatalf("expected id %s, got %s", id, wh.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestInsertRejectsInvalid(t *testing.T) {
	_, store := newStoreFixture(t)

	_, err := store.Insert(context.Background(), nil, WorkingHour{Weekday: 9, OpenTime: "09:00", CloseTime: "17:00"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestListOrdersByWeekday(t *testing.T) {
	mock, store := newStoreFixture(t)

	mock.ExpectQuery(`FROM working_hours`).
		WillReturnRows(pgxmock.NewRows(workingHourCols).
			AddRow(uuid.New(), 1, "09:00", "17:00", time.Now(), time.Now()).
			AddRow(uuid.New(), 2, "09:00", "13:00", time.Now(), time.Now()))

	hours, err := store.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(hours) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hours))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteReportsMissingRow(t *testing.T) {
	mock, store := newStoreFixture(t)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM working_hours`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := store.Delete(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted {
		t.Fatal("expected no row deleted")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
