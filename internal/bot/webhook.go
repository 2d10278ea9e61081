package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/doclinic/booking-platform/internal/appointments"
	"github.com/doclinic/booking-platform/internal/booking"
	"github.com/doclinic/booking-platform/internal/observability/metrics"
	"github.com/doclinic/booking-platform/internal/slots"
	"github.com/doclinic/booking-platform/internal/storage"
	"github.com/doclinic/booking-platform/pkg/logging"
)

// Intent names follow the deployed conversational agent verbatim, including
// the "reschdule" spelling. Renaming them here would break the agent.
const (
	intentBookingInitiate      = "booking.initiate"
	intentBookingGetTime       = "booking.get-time"
	intentBookingFinalize      = "booking.finalize"
	intentCancellationFinalize = "cancellation.finalize"
	intentRescheduleVerify     = "reschdule.verify"
	intentRescheduleGetSlots   = "reschdule.get-slots"
	intentRescheduleFinalize   = "reschdule.finalize"
)

const genericApology = "Sorry, I'm having trouble processing your request. Please try again later."

var rescheduleDatePrompts = []string{
	"Excellent, now share your preferred day or date with me.",
	"Awesome! Can you let me know your preferred day or date?",
	"Sure thing! Please specify your preferred day or date.",
	"Fantastic! What day or date works best for you?",
	"Perfect! Could you share your preferred day or date for the appointment?",
}

// Handler fulfils Dialogflow webhook calls for the booking agent. Every
// authenticated request is answered 200 with a fulfillmentText sentence; the
// agent cannot do anything useful with HTTP errors.
type Handler struct {
	workflow    *booking.Service
	slots       *slots.Store
	appts       *appointments.Store
	generator   *slots.Generator
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	horizonDays int
	now         func() time.Time
}

// NewHandler creates the bot webhook handler. horizonDays bounds how far out
// the agent will offer slots (0 falls back to 7).
func NewHandler(workflow *booking.Service, slotStore *slots.Store, apptStore *appointments.Store, generator *slots.Generator, m *metrics.BookingMetrics, logger *logging.Logger, horizonDays int) *Handler {
	if workflow == nil || slotStore == nil || apptStore == nil {
		panic("bot: workflow and stores required")
	}
	if generator == nil {
		generator = slots.NewGenerator(9, 17)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if horizonDays <= 0 {
		horizonDays = 7
	}
	return &Handler{
		workflow:    workflow,
		slots:       slotStore,
		appts:       apptStore,
		generator:   generator,
		metrics:     m,
		logger:      logger,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

type webhookRequest struct {
	QueryResult struct {
		Intent struct {
			DisplayName string `json:"displayName"`
		} `json:"intent"`
		Parameters     map[string]any  `json:"parameters"`
		OutputContexts []outputContext `json:"outputContexts"`
	} `json:"queryResult"`
}

type outputContext struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// findContext returns the output context whose short name (the last path
// segment) matches name.
func findContext(contexts []outputContext, name string) *outputContext {
	for i := range contexts {
		parts := strings.Split(contexts[i].Name, "/")
		if parts[len(parts)-1] == name {
			return &contexts[i]
		}
	}
	return nil
}

// ServeHTTP handles POST /webhooks/bot.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("bot webhook: malformed body", "error", err)
		h.reply(w, "unknown", genericApology)
		return
	}

	intent := req.QueryResult.Intent.DisplayName
	params := req.QueryResult.Parameters
	contexts := req.QueryResult.OutputContexts

	started := h.now()
	defer func() {
		h.metrics.ObserveWebhookLatency(intent, time.Since(started).Seconds())
	}()

	var text string
	switch intent {
	case intentBookingInitiate, intentRescheduleGetSlots:
		text = h.fetchSlots(r, params)
	case intentBookingGetTime:
		text = h.verifyTimeSlot(r, params, findContext(contexts, "ongoing-booking"))
	case intentBookingFinalize:
		text = h.finalizeBooking(r, params, findContext(contexts, "ongoing-booking"))
	case intentCancellationFinalize:
		text = h.cancel(r, params)
	case intentRescheduleVerify:
		text = h.verifyAppointment(r, params)
	case intentRescheduleFinalize:
		text = h.reschedule(r, findContext(contexts, "reschedule"))
	default:
		h.logger.Warn("bot webhook: unknown intent", "intent", intent)
		text = genericApology
	}

	h.reply(w, intent, text)
}

// fetchSlots answers booking.initiate and reschdule.get-slots. A given date
// lists that day; no date lists the next two days.
func (h *Handler) fetchSlots(r *http.Request, params map[string]any) string {
	var from, to time.Time
	dated := false

	if raw := stringParam(params, "date"); raw != "" {
		parsed, err := parseDialogflowTime(raw)
		if err != nil {
			return "Please enter a valid date."
		}
		dated = true
		from = slots.Midnight(parsed)
		to = from

		horizon := slots.Midnight(h.now()).AddDate(0, 0, h.horizonDays)
		if from.After(horizon) {
			return fmt.Sprintf("Sorry, you can only book appointments for the next %d days.", h.horizonDays)
		}
	} else {
		from = slots.Midnight(h.now()).AddDate(0, 0, 1)
		to = from.AddDate(0, 0, 1)
	}

	persisted, err := h.slots.ListByDateRange(r.Context(), nil, from, to)
	if err != nil {
		h.logger.Error("bot webhook: list slots failed", "error", err)
		return genericApology
	}

	schedule := h.generator.Schedule(from, to, persisted)
	days := make([]string, 0, len(schedule))
	for day := range schedule {
		days = append(days, day)
	}
	sort.Strings(days)

	var rendered []string
	for _, day := range days {
		var hours []string
		for _, slot := range schedule[day] {
			if slot.IsAvailable {
				hours = append(hours, slot.StartTime.Format("03 PM"))
			}
		}
		if len(hours) == 0 {
			continue
		}
		line := strings.Join(hours, ", ")
		if !dated {
			date, _ := time.Parse("2006-01-02", day)
			line = fmt.Sprintf("On %s:: %s", date.Format("Mon, 2 Jan"), line)
		}
		rendered = append(rendered, line)
	}

	if len(rendered) == 0 {
		if dated {
			return fmt.Sprintf("Sorry, no slots available on %s.", from.Format("Mon, 2 Jan 2006"))
		}
		return "Sorry, no slots available for next two days."
	}

	if dated {
		return fmt.Sprintf("Here are the available slots for %s: %s", from.Format("Mon, 2 Jan"), strings.Join(rendered, " and "))
	}
	return fmt.Sprintf("Here are the available slots for next two days: %s", strings.Join(rendered, " and "))
}

// verifyTimeSlot answers booking.get-time: the requested date lives in the
// ongoing-booking context, the time in the parameters.
func (h *Handler) verifyTimeSlot(r *http.Request, params map[string]any, ctx *outputContext) string {
	rawTime := stringParam(params, "time")
	if rawTime == "" {
		return "Please enter a valid time."
	}
	requested, err := parseDialogflowTime(rawTime)
	if err != nil {
		return "Please enter a valid time."
	}

	var date time.Time
	if ctx != nil {
		if rawDate := stringParam(ctx.Parameters, "date"); rawDate != "" {
			parsed, err := parseDialogflowTime(rawDate)
			if err == nil {
				date = slots.Midnight(parsed)
			}
		}
	}
	if date.IsZero() {
		return genericApology
	}

	slot, err := h.slots.FindByDateAndTime(r.Context(), nil, date, requested, 10*time.Minute)
	if err != nil && !storage.IsNotFound(err) {
		h.logger.Error("bot webhook: slot lookup failed", "error", err)
		return genericApology
	}
	if err == nil && !slot.IsAvailable {
		return "Sorry, the slot is not available. Please choose another slot."
	}

	return "Great! Please provide your name and email to finalize the booking."
}

// finalizeBooking answers booking.finalize: name and email arrive as
// parameters, date and time in the ongoing-booking context.
func (h *Handler) finalizeBooking(r *http.Request, params map[string]any, ctx *outputContext) string {
	name := stringParam(params, "name")
	if name == "" {
		// Dialogflow's sys.person entity nests the value.
		if person, ok := params["name"].(map[string]any); ok {
			name = stringParam(person, "name")
		}
	}
	email := stringParam(params, "email")

	var rawDate, rawTime string
	if ctx != nil {
		rawDate = stringParam(ctx.Parameters, "date")
		rawTime = stringParam(ctx.Parameters, "time")
	}
	if name == "" || email == "" || rawDate == "" || rawTime == "" {
		return "Something went wrong. Please re-start the booking process."
	}

	date, err := parseDialogflowTime(rawDate)
	if err != nil {
		return "Something went wrong. Please re-start the booking process."
	}
	start, err := parseDialogflowTime(rawTime)
	if err != nil {
		return "Something went wrong. Please re-start the booking process."
	}

	appt, err := h.workflow.Book(r.Context(), booking.BookRequest{
		Date:      date,
		StartTime: start,
		Name:      name,
		Email:     email,
	})
	if err != nil {
		return h.renderError("book", err)
	}

	return fmt.Sprintf("Your appointment is booked successfully. Your tracking id is %q. Please use this tracking id for any future reference.", strconv.FormatInt(appt.TrackingID, 10))
}

// cancel answers cancellation.finalize.
func (h *Handler) cancel(r *http.Request, params map[string]any) string {
	trackingID := int64Param(params, "trackingid")
	email := stringParam(params, "email")
	if trackingID == 0 || email == "" {
		return "Something went wrong. Please re-start the cancellation process."
	}

	if _, err := h.workflow.Cancel(r.Context(), trackingID, email); err != nil {
		return h.renderError("cancel", err)
	}

	return fmt.Sprintf("Your appointment with tracking id %d has been cancelled.", trackingID)
}

// verifyAppointment answers reschdule.verify: confirm the appointment exists
// before prompting for a new date.
func (h *Handler) verifyAppointment(r *http.Request, params map[string]any) string {
	trackingID := int64Param(params, "trackingid")
	email := stringParam(params, "email")

	_, err := h.appts.GetByTrackingIDAndEmail(r.Context(), nil, trackingID, email)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Sprintf("Appointment with tracking id %d and email %s not found.", trackingID, email)
		}
		h.logger.Error("bot webhook: appointment lookup failed", "error", err)
		return genericApology
	}

	return rescheduleDatePrompts[rand.Intn(len(rescheduleDatePrompts))]
}

// reschedule answers reschdule.finalize: everything arrives in the
// reschedule context accumulated over the conversation.
func (h *Handler) reschedule(r *http.Request, ctx *outputContext) string {
	if ctx == nil {
		return "Something went wrong. Please re-start the rescheduling process."
	}
	trackingID := int64Param(ctx.Parameters, "trackingid")
	email := stringParam(ctx.Parameters, "email")
	rawDate := stringParam(ctx.Parameters, "date")
	rawTime := stringParam(ctx.Parameters, "time")
	if trackingID == 0 || email == "" || rawDate == "" || rawTime == "" {
		return "Something went wrong. Please re-start the rescheduling process."
	}

	date, err := parseDialogflowTime(rawDate)
	if err != nil {
		return "Something went wrong. Please re-start the rescheduling process."
	}
	start, err := parseDialogflowTime(rawTime)
	if err != nil {
		return "Something went wrong. Please re-start the rescheduling process."
	}

	if _, err := h.workflow.Reschedule(r.Context(), trackingID, email, date, start); err != nil {
		return h.renderError("reschedule", err)
	}

	return fmt.Sprintf("Your appointment with tracking id %d has been rescheduled to %s on %s.",
		trackingID, start.Format("03 PM"), date.Format("January 2"))
}

// renderError turns the workflow error taxonomy into sentences the agent can
// speak. Persistence failures are logged and apologised for.
func (h *Handler) renderError(op string, err error) string {
	switch {
	case errors.Is(err, booking.ErrSlotUnavailable):
		return "Sorry, the slot is not available. Please choose another slot."
	case errors.Is(err, booking.ErrNotFound):
		return "Sorry, we could not find an appointment for that tracking id and email."
	case errors.Is(err, booking.ErrInvalidInput):
		return "Something went wrong. Please re-start the booking process."
	default:
		h.logger.Error("bot webhook: workflow failure", "op", op, "error", err)
		return genericApology
	}
}

func (h *Handler) reply(w http.ResponseWriter, intent string, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"fulfillmentText": text}); err != nil {
		h.logger.Error("bot webhook: write response failed", "intent", intent, "error", err)
	}
}

// stringParam reads a string parameter, tolerating absent keys.
func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// int64Param reads a numeric parameter that Dialogflow may deliver as a JSON
// number or a spoken string.
func int64Param(params map[string]any, key string) int64 {
	if params == nil {
		return 0
	}
	switch v := params[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// parseDialogflowTime accepts the RFC3339 values Dialogflow sends for
// sys.date and sys.time, plus a bare date fallback.
func parseDialogflowTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
