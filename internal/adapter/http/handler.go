package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds a use case to execute ledger operations, a hub streaming
// notifications to websocket clients and a logger for structured logging.
// Routes are registered on a chi.Router for convenient method handling.
type Handler struct {
	svc    port.FundraiserUseCase
	hub    *Hub
	denom  domain.Denomination
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. Mutating routes
// require the X-Account header naming the caller.
func NewHandler(svc port.FundraiserUseCase, hub *Hub, denom domain.Denomination, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, hub: hub, denom: denom, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/collection", h.handleCollection)
		r.Get("/campaigns/last-id", h.handleLastTokenID)
		r.Get("/campaigns/{id}", h.handleGetCampaign)
		r.Get("/tokens/{id}", h.handleGetCertificate)
		r.Get("/accounts/{address}", h.handleGetAccount)
		r.Get("/escrow", h.handleEscrow)
		r.Get("/events", h.handleListEvents)
		r.Get("/events/stream", h.handleEventStream)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAccount)
			r.Post("/campaigns", h.handleStartCampaign)
			r.Post("/campaigns/{id}/extend", h.handleExtendCampaign)
			r.Post("/campaigns/{id}/donations", h.handleDonate)
			r.Post("/campaigns/{id}/withdrawals", h.handleWithdraw)
			r.Post("/campaigns/{id}/end", h.handleEndCampaign)
			r.Post("/tokens/{id}/transfer", h.handleTransferCertificate)
			r.Put("/accounts/{address}/settings", h.handleAccountSettings)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
