// Package httpapi serves campaign commands, histories and state views over
// HTTP with a chi router.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bkniffler/myranor/internal/services/game/domain/campaign"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/engine"
	"github.com/go-chi/chi/v5"
)

// Service is the engine surface the handlers call.
type Service interface {
	Execute(ctx context.Context, actor event.Actor, cmd command.Command) (engine.Result, error)
	PublicState(ctx context.Context, campaignID string) (campaign.PublicCampaign, error)
	PrivateState(ctx context.Context, actor event.Actor, campaignID string) (any, error)
	History(ctx context.Context, actor event.Actor, campaignID string, from uint64, scope campaign.HistoryScope) ([]event.Stored, error)
}

// HealthCheck reports whether the service can serve requests.
type HealthCheck func(ctx context.Context) error

// Handler serves the campaign API.
type Handler struct {
	svc    Service
	health HealthCheck
	logger *slog.Logger
}

// NewHandler builds a Handler. A nil health check always reports healthy.
func NewHandler(svc Service, health HealthCheck, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, health: health, logger: logger}
}

// Routes returns the router with middleware applied.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery(h.logger))
	r.Use(RequestID)
	r.Use(Identity)
	r.Use(RequestLogger(h.logger))
	r.Use(JSONContentType)

	r.Get("/health", h.Health)
	r.Route("/campaigns/{campaignID}", func(r chi.Router) {
		r.Post("/commands", h.PostCommand)
		r.Get("/events", h.PublicEvents)
		r.Get("/events/private", h.PrivateEvents)
		r.Get("/state", h.PublicState)
		r.Get("/state/private", h.PrivateState)
	})
	return r
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// PostCommand handles POST /campaigns/{campaignID}/commands.
func (h *Handler) PostCommand(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		respondUnauthenticated(w)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondBadRequest(w, codeInvalidRequest, "request body is unreadable or too large")
		return
	}
	cmd, err := command.Decode(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if cmd.Campaign() != chi.URLParam(r, "campaignID") {
		respondBadRequest(w, codeCampaignIDMatch, "campaignId in the body must match the path")
		return
	}

	result, err := h.svc.Execute(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// PublicEvents handles GET /campaigns/{campaignID}/events.
func (h *Handler) PublicEvents(w http.ResponseWriter, r *http.Request) {
	h.events(w, r, campaign.HistoryPublic)
}

// PrivateEvents handles GET /campaigns/{campaignID}/events/private.
func (h *Handler) PrivateEvents(w http.ResponseWriter, r *http.Request) {
	h.events(w, r, campaign.HistoryPrivate)
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request, scope campaign.HistoryScope) {
	actor, ok := actorFrom(r.Context())
	if !ok && scope == campaign.HistoryPrivate {
		respondUnauthenticated(w)
		return
	}
	from, err := parseFrom(r)
	if err != nil {
		respondBadRequest(w, codeInvalidRequest, err.Error())
		return
	}
	events, err := h.svc.History(r.Context(), actor, chi.URLParam(r, "campaignID"), from, scope)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"events": events})
}

// PublicState handles GET /campaigns/{campaignID}/state.
func (h *Handler) PublicState(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.PublicState(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

// PrivateState handles GET /campaigns/{campaignID}/state/private.
func (h *Handler) PrivateState(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		respondUnauthenticated(w)
		return
	}
	view, err := h.svc.PrivateState(r.Context(), actor, chi.URLParam(r, "campaignID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

// fail logs unexpected errors before responding.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusOf(err) >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", GetRequestID(r.Context()),
		)
	}
	RespondError(w, err)
}

func parseFrom(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("from")
	if raw == "" {
		return 0, nil
	}
	from, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New("from must be a non-negative integer")
	}
	return from, nil
}
