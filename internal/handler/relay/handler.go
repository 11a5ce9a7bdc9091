package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erickai/companion/backend/internal/model/chat"
	"github.com/erickai/companion/backend/internal/relay"
	"github.com/erickai/companion/backend/internal/service/ai"
	"github.com/erickai/companion/backend/pkg/utils"
)

const (
	maxBodyBytes = 1 << 20
	version      = "1.0.0"
)

// Model generates a reply for ordered turns.
type Model interface {
	Complete(ctx context.Context, turns []chat.Turn) (string, error)
	ModelName() string
}

// Handler exposes a model as an OpenAI-shaped chat endpoint.
type Handler struct {
	model  Model
	logger *zap.Logger
	now    func() time.Time
}

// New creates the relay handler. model may be nil when no credentials are
// configured; POST /chat then answers 500.
func New(model Model, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{model: model, logger: logger, now: time.Now}
}

// RegisterRoutes mounts GET / and POST /chat.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleHealth)
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Servidor de Erick AI funcionando 🧠✨",
		"version": version,
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := utils.DecodeJSON(w, r, maxBodyBytes, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "a messages array is required")
		return
	}

	var turns []chat.Turn
	if len(payload.Messages) == 0 || payload.Messages[0] != '[' {
		utils.RespondError(w, http.StatusBadRequest, "a messages array is required")
		return
	}
	if err := json.Unmarshal(payload.Messages, &turns); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "a messages array is required")
		return
	}
	for _, turn := range turns {
		if !turn.Role.Valid() {
			utils.RespondError(w, http.StatusBadRequest, "invalid message role: "+string(turn.Role))
			return
		}
	}

	if h.model == nil {
		utils.RespondError(w, http.StatusInternalServerError, "API key not configured")
		return
	}

	reply, err := h.model.Complete(r.Context(), turns)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Error("model completion failed", zap.Int("turns", len(turns)), zap.Error(err))
		switch {
		case errors.Is(err, ai.ErrUnauthorized):
			utils.RespondError(w, http.StatusUnauthorized, "invalid API key")
		case errors.Is(err, ai.ErrQuotaExceeded):
			utils.RespondError(w, http.StatusPaymentRequired, "API quota exhausted")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, relay.CompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: h.now().Unix(),
		Model:   h.model.ModelName(),
		Choices: []relay.Choice{{
			Index:        0,
			Message:      chat.Turn{Role: chat.RoleAssistant, Content: reply},
			FinishReason: "stop",
		}},
	})
}
