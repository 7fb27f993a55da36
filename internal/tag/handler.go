// AngelaMos | 2026
// handler.go

package tag

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/tagback/internal/core"
	"github.com/carterperez-dev/tagback/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/tags", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMine)
	})
}

// RegisterAdminRoutes exposes the activation hooks the subscription
// workflow calls, plus keyspace monitoring.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/tags", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/keyspace", h.Keyspace)
		r.Post("/{ownerID}/activate", h.Activate)
		r.Post("/{ownerID}/deactivate", h.Deactivate)
	})
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())
	if err := h.validator.Var(ownerID, "required,uuid"); err != nil {
		core.Unauthorized(w, "authentication required")
		return
	}

	rec, err := h.service.GetForOwner(r.Context(), ownerID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, ToTagResponse(rec))
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	rec, created, err := h.service.Activate(r.Context(), ownerID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := ActivationResponse{Tag: ToTagResponse(rec), Created: created}
	if created {
		core.Created(w, resp)
		return
	}
	core.OK(w, resp)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Deactivate(r.Context(), ownerID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, ToTagResponse(rec))
}

func (h *Handler) Keyspace(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.KeyspaceStats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) ownerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	params := OwnerParams{OwnerID: chi.URLParam(r, "ownerID")}

	if err := h.validator.Struct(params); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return "", false
	}

	return params.OwnerID, true
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "tag")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "authentication required")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid owner")
	case errors.Is(err, ErrAllocationExhausted):
		core.JSONError(w, core.UnavailableError("identifier keyspace exhausted"))
	default:
		core.InternalServerError(w, err)
	}
}
