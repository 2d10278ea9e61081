package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/doclinic/booking-platform/pkg/logging"
)

// Handler exposes the booking workflow over REST. Admin inspection of
// appointments lives in the appointments package; this surface is the
// patient-facing lifecycle.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a booking HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type bookRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Book creates an appointment.
// POST /appointments
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	date, start, problem := parseDateAndTime(req.Date, req.StartTime)
	if problem != "" {
		http.Error(w, `{"error": "`+problem+`"}`, http.StatusBadRequest)
		return
	}
	var end time.Time
	if req.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			http.Error(w, `{"error": "invalid end_time, expected RFC3339"}`, http.StatusBadRequest)
			return
		}
		end = parsed
	}

	appt, err := h.service.Book(r.Context(), BookRequest{
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Name:      req.Name,
		Email:     req.Email,
	})
	if err != nil {
		h.writeError(w, "book", err)
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

type cancelRequest struct {
	TrackingID int64  `json:"tracking_id"`
	Email      string `json:"email"`
}

// Cancel deletes an appointment by tracking id and email and frees its slot.
// POST /appointments/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.service.Cancel(r.Context(), req.TrackingID, req.Email)
	if err != nil {
		h.writeError(w, "cancel", err)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

type rescheduleRequest struct {
	TrackingID int64  `json:"tracking_id"`
	Email      string `json:"email"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
}

// Reschedule moves an appointment to a new date and time.
// POST /appointments/reschedule
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	date, start, problem := parseDateAndTime(req.Date, req.StartTime)
	if problem != "" {
		http.Error(w, `{"error": "`+problem+`"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.service.Reschedule(r.Context(), req.TrackingID, req.Email, date, start)
	if err != nil {
		h.writeError(w, "reschedule", err)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

func parseDateAndTime(rawDate, rawStart string) (time.Time, time.Time, string) {
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return time.Time{}, time.Time{}, "invalid date, expected YYYY-MM-DD"
	}
	start, err := time.Parse(time.RFC3339, rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, "invalid start_time, expected RFC3339"
	}
	return date, start, ""
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
	case errors.Is(err, ErrSlotUnavailable):
		http.Error(w, `{"error": "slot is not available"}`, http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
	default:
		h.logger.Error("booking operation failed", "op", op, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
