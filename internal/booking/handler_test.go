package booking

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/doclinic/booking-platform/internal/appointments"
	"github.com/doclinic/booking-platform/internal/slots"
	"github.com/doclinic/booking-platform/pkg/logging"
)

func newHandlerFixture(t *testing.T) (pgxmock.PgxPoolIface, *Handler) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	logger := logging.NewWithWriter("error", io.Discard)
	slotStore := slots.NewStore(mock)
	apptStore := appointments.NewStore(mock)
	resolver := NewResolver(slotStore, 10*time.Minute, time.Hour)
	svc := NewService(mock, slotStore, apptStore, resolver, nil, nil, logger)
	return mock, NewHandler(svc, logger)
}

func TestBookEndpointCreatesAppointment(t *testing.T) {
	mock, h := newHandlerFixture(t)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	start := date.Add(10 * time.Hour)
	slotID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM slots`).
		WithArgs(date, start, start.Add(10*time.Minute)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO slots`).
		WithArgs(date, start, start.Add(time.Hour), false).
		WillReturnRows(pgxmock.NewRows(slotCols).
			AddRow(slotID, date, start, start.Add(time.Hour), false, time.Now(), time.Now()))
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(slotID, "Ada Lovelace", "ada@example.com").
		WillReturnRows(pgxmock.NewRows(apptCols).
			AddRow(uuid.New(), int64(11), slotID, "Ada Lovelace", "ada@example.com", time.Now(), time.Now()))
	mock.ExpectCommit()

	body := `{"date": "2026-09-01", "start_time": "2026-09-01T10:00:00Z", "name": "Ada Lovelace", "email": "ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"tracking_id":11`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookEndpointRejectsMalformedDate(t *testing.T) {
	_, h := newHandlerFixture(t)

	body := `{"date": "September 1st", "start_time": "2026-09-01T10:00:00Z", "name": "Ada", "email": "ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookEndpointMapsUnavailableSlotToConflict(t *testing.T) {
	mock, h := newHandlerFixture(t)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	start := date.Add(10 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM slots`).
		WithArgs(date, start, start.Add(10*time.Minute)).
		WillReturnRows(pgxmock.NewRows(slotCols).
			AddRow(uuid.New(), date, start, start.Add(time.Hour), false, time.Now(), time.Now()))
	mock.ExpectRollback()

	body := `{"date": "2026-09-01", "start_time": "2026-09-01T10:00:00Z", "name": "Ada", "email": "ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelEndpointMapsMissingAppointmentToNotFound(t *testing.T) {
	mock, h := newHandlerFixture(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM appointments`).
		WithArgs(int64(404), "ada@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	body := `{"tracking_id": 404, "email": "ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments/cancel", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleEndpointValidatesInput(t *testing.T) {
	_, h := newHandlerFixture(t)

	body := `{"tracking_id": 11, "email": "ada@example.com", "date": "2026-09-01", "start_time": "noonish"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments/reschedule", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Reschedule(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
