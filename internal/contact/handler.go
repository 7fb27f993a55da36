// AngelaMos | 2026
// handler.go

package contact

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/tagback/internal/core"
)

const maxContactBody = 64 << 10

type SubmitRequest struct {
	Message string `json:"message"            validate:"required"`
	ReplyTo string `json:"reply_to,omitempty" validate:"omitempty,email,max=255"`
}

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
	limiter func(http.Handler) http.Handler,
) {
	r.Route("/contact", func(r chi.Router) {
		r.Use(limiter)

		r.Post("/{token}", h.Submit)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest

	body := http.MaxBytesReader(w, r.Body, maxContactBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	receipt, err := h.service.Submit(r.Context(), Submission{
		Token:   chi.URLParam(r, "token"),
		Message: req.Message,
		ReplyTo: req.ReplyTo,
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "message is empty or too long")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.JSON(w, http.StatusAccepted, receipt)
}
