package slots

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/doclinic/booking-platform/internal/storage"
	"github.com/doclinic/booking-platform/pkg/logging"
)

// Handler provides HTTP endpoints for slot administration.
type Handler struct {
	store     *Store
	generator *Generator
	logger    *logging.Logger
}

// NewHandler creates a slot HTTP handler.
func NewHandler(store *Store, generator *Generator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if generator == nil {
		generator = NewGenerator(9, 17)
	}
	return &Handler{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// ListSchedule returns the generated schedule for a date range.
// GET /slots?from=2024-03-09&to=2024-03-10
func (h *Handler) ListSchedule(w http.ResponseWriter, r *http.Request) {
	from := time.Now()
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, `{"error": "invalid from date, expected YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		from = parsed
	}
	to := from
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, `{"error": "invalid to date, expected YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		to = parsed
	}
	if Midnight(to).Before(Midnight(from)) {
		http.Error(w, `{"error": "to must not be before from"}`, http.StatusBadRequest)
		return
	}

	persisted, err := h.store.ListByDateRange(r.Context(), nil, from, to)
	if err != nil {
		h.logger.Error("failed to list slots", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, h.generator.Schedule(from, to, persisted))
}

// Get returns a single persisted slot.
// GET /slots/{slotID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "slotID"))
	if err != nil {
		http.Error(w, `{"error": "invalid slot id"}`, http.StatusBadRequest)
		return
	}

	slot, err := h.store.GetByID(r.Context(), nil, id)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, `{"error": "slot not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load slot", "slot_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// slotRequest is the admin create/update body.
type slotRequest struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable *bool  `json:"is_available"`
}

func (req *slotRequest) toSlot() (Slot, string) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return Slot{}, "invalid date, expected YYYY-MM-DD"
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return Slot{}, "invalid start_time, expected RFC3339"
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return Slot{}, "invalid end_time, expected RFC3339"
	}
	if !start.Before(end) {
		return Slot{}, "start_time must be before end_time"
	}
	slot := Slot{
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		slot.IsAvailable = *req.IsAvailable
	}
	return slot, ""
}

// Create stores an administrative slot.
// POST /slots
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	slot, problem := req.toSlot()
	if problem != "" {
		http.Error(w, `{"error": "`+problem+`"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.store.Insert(r.Context(), nil, slot)
	if err != nil {
		h.logger.Error("failed to create slot", "error", err)
		http.Error(w, `{"error": "failed to create slot"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("slot created", "slot_id", stored.ID, "start_time", stored.StartTime)
	writeJSON(w, http.StatusCreated, stored)
}

// Update rewrites a slot.
// PUT /slots/{slotID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "slotID"))
	if err != nil {
		http.Error(w, `{"error": "invalid slot id"}`, http.StatusBadRequest)
		return
	}

	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	slot, problem := req.toSlot()
	if problem != "" {
		http.Error(w, `{"error": "`+problem+`"}`, http.StatusBadRequest)
		return
	}
	slot.ID = id

	stored, err := h.store.Update(r.Context(), nil, slot)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, `{"error": "slot not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update slot", "slot_id", id, "error", err)
		http.Error(w, `{"error": "failed to update slot"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// Delete removes a slot.
// DELETE /slots/{slotID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "slotID"))
	if err != nil {
		http.Error(w, `{"error": "invalid slot id"}`, http.StatusBadRequest)
		return
	}

	deleted, err := h.store.Delete(r.Context(), nil, id)
	if err != nil {
		h.logger.Error("failed to delete slot", "slot_id", id, "error", err)
		http.Error(w, `{"error": "failed to delete slot"}`, http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, `{"error": "slot not found"}`, http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
