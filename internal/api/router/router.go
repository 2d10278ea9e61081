package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/doclinic/booking-platform/internal/appointments"
	"github.com/doclinic/booking-platform/internal/booking"
	"github.com/doclinic/booking-platform/internal/bot"
	httpmiddleware "github.com/doclinic/booking-platform/internal/http/middleware"
	"github.com/doclinic/booking-platform/internal/slots"
	"github.com/doclinic/booking-platform/internal/workinghours"
	"github.com/doclinic/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	SlotsHandler        *slots.Handler
	AppointmentsHandler *appointments.Handler
	BookingHandler      *booking.Handler
	WorkingHoursHandler *workinghours.Handler
	BotWebhook          *bot.Handler
	MetricsHandler      http.Handler

	CORSAllowedOrigins []string
	AdminAuthSecret    string
	BotWebhookAPIKey   string
	WebhookRateLimit   float64
	WebhookRateBurst   int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// adminOnly applies JWT auth to mutating routes; with no secret
	// configured the routes stay open (local development).
	adminOnly := func(sub chi.Router) chi.Router {
		if cfg.AdminAuthSecret != "" {
			return sub.With(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		}
		return sub
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.BotWebhook != nil {
			public.Route("/webhooks/bot", func(wh chi.Router) {
				wh.Use(httpmiddleware.WebhookAPIKey(cfg.BotWebhookAPIKey))
				if cfg.WebhookRateLimit > 0 {
					wh.Use(httpmiddleware.RateLimit(cfg.WebhookRateLimit, cfg.WebhookRateBurst))
				}
				wh.Post("/", cfg.BotWebhook.ServeHTTP)
			})
		}
	})

	if cfg.SlotsHandler != nil {
		r.Route("/slots", func(sr chi.Router) {
			sr.Get("/", cfg.SlotsHandler.ListSchedule)
			sr.Get("/{slotID}", cfg.SlotsHandler.Get)
			admin := adminOnly(sr)
			admin.Post("/", cfg.SlotsHandler.Create)
			admin.Put("/{slotID}", cfg.SlotsHandler.Update)
			admin.Delete("/{slotID}", cfg.SlotsHandler.Delete)
		})
	}

	r.Route("/appointments", func(ar chi.Router) {
		// Booking is public: the web form and the conversational agent
		// both create appointments without credentials.
		if cfg.BookingHandler != nil {
			ar.Post("/", cfg.BookingHandler.Book)
			ar.Post("/cancel", cfg.BookingHandler.Cancel)
			ar.Post("/reschedule", cfg.BookingHandler.Reschedule)
		}
		if cfg.AppointmentsHandler != nil {
			ar.Get("/", cfg.AppointmentsHandler.List)
			ar.Get("/{appointmentID}", cfg.AppointmentsHandler.Get)
			admin := adminOnly(ar)
			admin.Put("/{appointmentID}", cfg.AppointmentsHandler.Update)
			admin.Delete("/{appointmentID}", cfg.AppointmentsHandler.Delete)
		}
	})

	if cfg.WorkingHoursHandler != nil {
		r.Route("/working-hours", func(wr chi.Router) {
			wr.Get("/", cfg.WorkingHoursHandler.List)
			wr.Get("/{workingHourID}", cfg.WorkingHoursHandler.Get)
			admin := adminOnly(wr)
			admin.Post("/", cfg.WorkingHoursHandler.Create)
			admin.Put("/{workingHourID}", cfg.WorkingHoursHandler.Update)
			admin.Delete("/{workingHourID}", cfg.WorkingHoursHandler.Delete)
		})
	}

	return r
}
