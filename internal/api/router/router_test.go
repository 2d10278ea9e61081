package router

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

	"github.com/doclinic/booking-platform/internal/appointments"
	"github.com/doclinic/booking-platform/internal/booking"
	"github.com/doclinic/booking-platform/internal/bot"
	"github.com/doclinic/booking-platform/internal/slots"
	"github.com/doclinic/booking-platform/internal/workinghours"
	"github.com/doclinic/booking-platform/pkg/logging"
)

func newTestRouter(t *testing.T) (pgxmock.PgxPoolIface, http.Handler) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)

	logger := logging.NewWithWriter("error", io.Discard)
	slotStore := slots.NewStore(mock)
	apptStore := appointments.NewStore(mock)
	whStore := workinghours.NewStore(mock)
	generator := slots.NewGenerator(9, 17)
	resolver := booking.NewResolver(slotStore, 10*time.Minute, time.Hour)
	workflow := booking.NewService(mock, slotStore, apptStore, resolver, nil, nil, logger)

	handler := New(&Config{
		Logger:              logger,
		SlotsHandler:        slots.NewHandler(slotStore, generator, logger),
		AppointmentsHandler: appointments.NewHandler(apptStore, logger),
		BookingHandler:      booking.NewHandler(workflow, logger),
		WorkingHoursHandler: workinghours.NewHandler(whStore, logger),
		BotWebhook:          bot.NewHandler(workflow, slotStore, apptStore, generator, nil, logger, 7),
		AdminAuthSecret:     "admin-secret",
		BotWebhookAPIKey:    "bot-secret",
	})
	return mock, handler
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestBotWebhookRequiresAPIKey(t *testing.T) {
	_, handler := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/bot", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/webhooks/bot", strings.NewReader(`{}`))
	req.Header.Set("X-Api-Key", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", rec.Code)
	}
}

func TestBotWebhookAcceptsValidKey(t *testing.T) {
	_, handler := newTestRouter(t)

	body := `{"queryResult": {"intent": {"displayName": "smalltalk.hello"}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/bot", strings.NewReader(body))
	req.Header.Set("X-Api-Key", "bot-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fulfillmentText") {
		t.Fatalf("expected fulfillment response, got %q", rec.Body.String())
	}
}

func TestMutatingSlotRoutesRequireAdminJWT(t *testing.T) {
	_, handler := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/slots", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}
}

func TestScheduleListingIsPublic(t *testing.T) {
	mock, handler := newTestRouter(t)

	mock.ExpectQuery(`FROM slots`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start_time", "end_time", "is_available", "created_at", "updated_at"}))

	req := httptest.NewRequest(http.MethodGet, "/slots?from=2026-09-01&to=2026-09-01", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "2026-09-01") {
		t.Fatalf("expected generated schedule keyed by date, got %q", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPublicBookingEndpoint(t *testing.T) {
	mock, handler := newTestRouter(t)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	start := date.Add(10 * time.Hour)
	slotID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM slots`).
		WithArgs(date, start, start.Add(10*time.Minute)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO slots`).
		WithArgs(date, start, start.Add(time.Hour), false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "start_time", "end_time", "is_available", "created_at", "updated_at"}).
			AddRow(slotID, date, start, start.Add(time.Hour), false, time.Now(), time.Now()))
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(slotID, "Ada Lovelace", "ada@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "tracking_id", "slot_id", "name", "email", "created_at", "updated_at"}).
			AddRow(uuid.New(), int64(7), slotID, "Ada Lovelace", "ada@example.com", time.Now(), time.Now()))
	mock.ExpectCommit()

	body := `{"date": "2026-09-01", "start_time": "2026-09-01T10:00:00Z", "name": "Ada Lovelace", "email": "ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"tracking_id":7`) {
		t.Fatalf("expected tracking id in response, got %q", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
