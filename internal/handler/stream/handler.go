package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatService "github.com/erickai/companion/backend/internal/service/chat"
	"github.com/erickai/companion/backend/pkg/utils"
)

// ErrStreamingUnsupported is returned when the writer cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// Handler delivers one conversation turn as Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		logger:  logger,
	}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string      `json:"event"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Finished  bool        `json:"finished,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// RegisterRoutes mounts GET /stream/{sessionID}?message=.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		userMessage := r.URL.Query().Get("message")

		if strings.TrimSpace(userMessage) == "" {
			utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
			return
		}

		if err := h.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
			if errors.Is(err, ErrStreamingUnsupported) {
				utils.RespondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			h.logger.Warn("stream request ended with error",
				zap.String("sessionId", sessionID),
				zap.Error(err))
		}
	})
}

// HandleStreamRequest submits userMessage to the session's conversation and
// streams each step of the turn.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}

	utils.SetupSSEHeaders(w)

	conv, err := h.chatSvc.Conversation(ctx, sessionID)
	if err != nil {
		h.send(w, flusher, StreamResponse{Event: "error", SessionID: sessionID, Error: err.Error()})
		return fmt.Errorf("failed to resolve session: %w", err)
	}

	h.send(w, flusher, StreamResponse{Event: "start", SessionID: sessionID})

	outcome := conv.Submit(context.WithoutCancel(ctx), userMessage)
	if !outcome.Accepted {
		h.send(w, flusher, StreamResponse{
			Event:     "rejected",
			SessionID: sessionID,
			Data:      map[string]string{"reason": string(outcome.Reason)},
		})
		h.send(w, flusher, StreamResponse{Event: "state", SessionID: sessionID, Data: outcome.State})
		h.send(w, flusher, StreamResponse{Event: "end", SessionID: sessionID, Finished: true})
		return nil
	}

	h.send(w, flusher, StreamResponse{Event: "analysis", SessionID: sessionID, Data: outcome.Analysis})
	h.send(w, flusher, StreamResponse{Event: "message", SessionID: sessionID, Data: outcome.UserMessage})
	h.send(w, flusher, StreamResponse{Event: "message", SessionID: sessionID, Data: outcome.Reply})
	h.send(w, flusher, StreamResponse{Event: "state", SessionID: sessionID, Data: outcome.State})
	h.send(w, flusher, StreamResponse{Event: "end", SessionID: sessionID, Finished: true})

	h.logger.Info("stream turn completed",
		zap.String("sessionId", sessionID),
		zap.Bool("relayFailed", outcome.RelayFailed))
	return nil
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, resp StreamResponse) {
	if err := utils.SendSSEEvent(w, flusher, resp.Event, resp); err != nil {
		h.logger.Debug("failed to write sse event", zap.String("event", resp.Event), zap.Error(err))
	}
}
