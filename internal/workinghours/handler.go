package workinghours

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/doclinic/booking-platform/internal/storage"
	"github.com/doclinic/booking-platform/pkg/logging"
)

// Handler provides HTTP endpoints for working-hour administration.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a working-hours HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// List returns all working hours ordered by weekday.
// GET /working-hours
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	hours, err := h.store.List(r.Context(), nil)
	if err != nil {
		h.logger.Error("failed to list working hours", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if hours == nil {
		hours = []WorkingHour{}
	}

	writeJSON(w, http.StatusOK, hours)
}

// Get returns a single working-hour entry.
// GET /working-hours/{workingHourID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "workingHourID"))
	if err != nil {
		http.Error(w, `{"error": "invalid working hour id"}`, http.StatusBadRequest)
		return
	}

	wh, err := h.store.GetByID(r.Context(), nil, id)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, `{"error": "working hour not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load working hour", "working_hour_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, wh)
}

type workingHourRequest struct {
	Weekday   int    `json:"weekday"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

// Create stores a new working-hour entry.
// POST /working-hours
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req workingHourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	wh := WorkingHour{Weekday: req.Weekday, OpenTime: req.OpenTime, CloseTime: req.CloseTime}
	if err := wh.Validate(); err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.store.Insert(r.Context(), nil, wh)
	if err != nil {
		h.logger.Error("failed to create working hour", "error", err)
		http.Error(w, `{"error": "failed to create working hour"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, stored)
}

// Update rewrites a working-hour entry.
// PUT /working-hours/{workingHourID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "workingHourID"))
	if err != nil {
		http.Error(w, `{"error": "invalid working hour id"}`, http.StatusBadRequest)
		return
	}

	var req workingHourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	wh := WorkingHour{ID: id, Weekday: req.Weekday, OpenTime: req.OpenTime, CloseTime: req.CloseTime}
	if err := wh.Validate(); err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.store.Update(r.Context(), nil, wh)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, `{"error": "working hour not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update working hour", "working_hour_id", id, "error", err)
		http.Error(w, `{"error": "failed to update working hour"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// Delete removes a working-hour entry.
// DELETE /working-hours/{workingHourID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "workingHourID"))
	if err != nil {
		http.Error(w, `{"error": "invalid working hour id"}`, http.StatusBadRequest)
		return
	}

	deleted, err := h.store.Delete(r.Context(), nil, id)
	if err != nil {
		h.logger.Error("failed to delete working hour", "working_hour_id", id, "error", err)
		http.Error(w, `{"error": "failed to delete working hour"}`, http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, `{"error": "working hour not found"}`, http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
