package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erickai/companion/backend/internal/model/persona"
	"github.com/erickai/companion/backend/pkg/utils"
)

// Handler serves the persona card.
type Handler struct {
	persona persona.Persona
}

// New creates the persona handler.
func New(p persona.Persona) *Handler {
	return &Handler{
		persona: p,
	}
}

// RegisterRoutes mounts GET /persona.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/persona", h.handleGetPersona)
}

// handleGetPersona returns the public persona card. The system prompt is
// never part of it.
func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.persona)
}
