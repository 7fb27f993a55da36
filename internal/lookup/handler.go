// AngelaMos | 2026
// handler.go

package lookup

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/tagback/internal/core"
	"github.com/carterperez-dev/tagback/internal/identifier"
)

const maxLookupBody = 1 << 10

type LookupRequest struct {
	Code string `json:"code"`
}

type SuggestResponse struct {
	Candidate   string   `json:"candidate"`
	Valid       bool     `json:"valid"`
	Diagnostics []string `json:"diagnostics"`
}

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	limiter func(http.Handler) http.Handler,
) {
	r.Route("/lookup", func(r chi.Router) {
		r.Use(limiter)

		r.Post("/", h.Lookup)
		r.Get("/suggest", h.Suggest)
	})
}

// Lookup answers 200 with a token for every request. A body that does
// not decode is looked up as blank input.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest

	body := http.MaxBytesReader(w, r.Body, maxLookupBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		req.Code = ""
	}

	core.OK(w, h.resolver.Lookup(r.Context(), req.Code))
}

func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	candidate, diagnostics := identifier.Suggest(r.URL.Query().Get("code"))
	if diagnostics == nil {
		diagnostics = []string{}
	}

	core.OK(w, SuggestResponse{
		Candidate:   candidate,
		Valid:       identifier.IsValid(candidate),
		Diagnostics: diagnostics,
	})
}
