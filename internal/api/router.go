package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/caretrack/hospital-backend/internal/billing"
	"github.com/caretrack/hospital-backend/internal/directory"
	"github.com/caretrack/hospital-backend/internal/scheduling"
)

type RouterConfig struct {
	Scheduling *scheduling.Service
	Billing    *billing.Service
	Directory  *directory.Service
	PgPool     *pgxpool.Pool
	Redis      *redis.Client
	Env        string
	Version    string
	JWTSecret  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints, reachable without a token
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))

		pr.Route("/appointments", func(ar chi.Router) {
			ar.Post("/", createAppointmentHandler(cfg.Scheduling))
			ar.Get("/", listAppointmentsHandler(cfg.Scheduling))
			ar.Get("/{id}", getAppointmentHandler(cfg.Scheduling))
			ar.Put("/{id}", updateAppointmentHandler(cfg.Scheduling))
			ar.Delete("/{id}", deleteAppointmentHandler(cfg.Scheduling))
			ar.Get("/doctor/{id}", listAppointmentsByProviderHandler(cfg.Scheduling))
			ar.Get("/patient/{id}", listAppointmentsByPatientHandler(cfg.Scheduling))
		})

		pr.Route("/billing", func(br chi.Router) {
			br.Post("/invoices", createInvoiceHandler(cfg.Billing))
			br.Get("/invoices", listInvoicesHandler(cfg.Billing))
			br.Get("/invoices/{id}", getInvoiceHandler(cfg.Billing))
			br.Put("/invoices/{id}", updateInvoiceHandler(cfg.Billing))
			br.Delete("/invoices/{id}", deleteInvoiceHandler(cfg.Billing))
			br.Get("/invoices/{id}/payments", listPaymentsHandler(cfg.Billing))
			br.Post("/payments", recordPaymentHandler(cfg.Billing))
			br.Get("/stats", billingStatsHandler(cfg.Billing))
		})

		pr.Route("/patients", func(dr chi.Router) {
			dr.Post("/", createPatientHandler(cfg.Directory))
			dr.Get("/", listPatientsHandler(cfg.Directory))
			dr.Get("/{id}", getPatientHandler(cfg.Directory))
			dr.Put("/{id}", updatePatientHandler(cfg.Directory))
			dr.Delete("/{id}", deletePatientHandler(cfg.Directory))
		})

		pr.Route("/staff", func(dr chi.Router) {
			dr.Post("/", createStaffHandler(cfg.Directory))
			dr.Get("/", listStaffHandler(cfg.Directory))
			dr.Get("/{id}", getStaffHandler(cfg.Directory))
			dr.Put("/{id}", updateStaffHandler(cfg.Directory))
			dr.Delete("/{id}", deleteStaffHandler(cfg.Directory))
		})
	})

	return r
}
