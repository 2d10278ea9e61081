package appointments

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/doclinic/booking-platform/internal/storage"
	"github.com/doclinic/booking-platform/pkg/logging"
)

// Handler provides admin HTTP endpoints for appointments. Booking itself is
// handled by the booking workflow handler; this surface is list/inspect/fix.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates an appointment HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// List returns recent appointments.
// GET /appointments?limit=50
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	appts, err := h.store.List(r.Context(), nil, limit)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}

	writeJSON(w, http.StatusOK, appts)
}

// Get returns a single appointment.
// GET /appointments/{appointmentID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, `{"error": "invalid appointment id"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.store.GetByID(r.Context(), nil, id)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "appointment_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

type updateRequest struct {
	SlotID string `json:"slot_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Update rebinds patient details or the slot reference.
// PUT /appointments/{appointmentID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, `{"error": "invalid appointment id"}`, http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		http.Error(w, `{"error": "invalid slot_id"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, `{"error": "name and email required"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.store.Update(r.Context(), nil, Appointment{
		ID:     id,
		SlotID: slotID,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update appointment", "appointment_id", id, "error", err)
		http.Error(w, `{"error": "failed to update appointment"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// Delete removes an appointment directly, without touching its slot. Use the
// booking cancel flow to release the slot as well.
// DELETE /appointments/{appointmentID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, `{"error": "invalid appointment id"}`, http.StatusBadRequest)
		return
	}

	deleted, err := h.store.Delete(r.Context(), nil, id)
	if err != nil {
		h.logger.Error("failed to delete appointment", "appointment_id", id, "error", err)
		http.Error(w, `{"error": "failed to delete appointment"}`, http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
