package chat

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
	"github.com/erickai/companion/backend/internal/model/chat"
	chatService "github.com/erickai/companion/backend/internal/service/chat"
	"github.com/erickai/companion/backend/internal/service/conversation"
	"github.com/erickai/companion/backend/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Handler serves the session and conversation endpoints.
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New creates the session handler.
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		logger:  logger,
	}
}

type sessionResponse struct {
	Session chat.Session       `json:"session"`
	State   conversation.State `json:"state"`
}

type submitResponse struct {
	Accepted bool                      `json:"accepted"`
	Reason   conversation.RejectReason `json:"reason,omitempty"`
	Analysis *emotion.Analysis         `json:"analysis,omitempty"`
	State    conversation.State        `json:"state"`
}

type resetResponse struct {
	Reset bool               `json:"reset"`
	State conversation.State `json:"state"`
}

type stateResponse struct {
	State conversation.State `json:"state"`
}

// RegisterRoutes mounts /session and its per-session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleDeleteSession)
		r.Post("/messages", h.handleSubmit)
		r.Post("/crisis-alert/close", h.handleCloseAlert)
		r.Post("/reset", h.handleReset)
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, conv, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, sessionResponse{Session: session, State: conv.Snapshot()})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	conv, err := h.chatSvc.Conversation(r.Context(), sessionID)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, sessionResponse{Session: session, State: conv.Snapshot()})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := utils.DecodeJSON(w, r, maxBodyBytes, &payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.chatSvc.Conversation(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	// The turn outlives the request; a client leaving mid-reply must not
	// replace the model's answer with the fallback line.
	outcome := conv.Submit(context.WithoutCancel(r.Context()), payload.Content)
	utils.RespondJSON(w, http.StatusOK, submitResponse{
		Accepted: outcome.Accepted,
		Reason:   outcome.Reason,
		Analysis: outcome.Analysis,
		State:    outcome.State,
	})
}

func (h *Handler) handleCloseAlert(w http.ResponseWriter, r *http.Request) {
	conv, err := h.chatSvc.Conversation(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stateResponse{State: conv.CloseCrisisAlert()})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	conv, err := h.chatSvc.Conversation(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	state, ok := conv.Reset()
	utils.RespondJSON(w, http.StatusOK, resetResponse{Reset: ok, State: state})
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("session lookup failed", zap.Error(err))
	utils.RespondError(w, http.StatusInternalServerError, "internal error")
}
