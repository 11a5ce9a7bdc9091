package realtime

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	chatservice "github.com/erickai/companion/backend/internal/service/chat"
	"github.com/erickai/companion/backend/internal/service/conversation"
	"github.com/erickai/companion/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler drives a conversation over a websocket.
type WebSocketHandler struct {
	chatSvc  *chatservice.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the realtime handler. checkOrigin may be nil
// to accept every origin.
func NewWebSocketHandler(chatSvc *chatservice.Service, checkOrigin func(*http.Request) bool, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &WebSocketHandler{
		chatSvc: chatSvc,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts GET /ws/{sessionID}.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection serialises writes; gorilla allows one concurrent writer.
type connection struct {
	conn      *websocket.Conn
	sessionID string
	logger    *zap.Logger

	mu sync.Mutex
}

func (c *connection) send(msgType string, data interface{}) {
	msg := outgoingMessage{
		Type:      msgType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Debug("websocket write failed", zap.String("type", msgType), zap.Error(err))
	}
}

func (c *connection) sendError(message string) {
	c.send("error", map[string]string{"message": message})
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conv, err := h.chatSvc.Conversation(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	logger := h.logger.With(zap.String("sessionId", sessionID))
	logger.Info("websocket connected")
	defer logger.Info("websocket disconnected")

	c := &connection{conn: ws, sessionID: sessionID, logger: logger}

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		pingLoop(ctx, ws)
	}()

	c.send("state", conv.Snapshot())

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

		// Touch the session so an open socket keeps it alive.
		if conv, err = h.chatSvc.Conversation(ctx, sessionID); err != nil {
			c.sendError(err.Error())
			return
		}

		switch msg.Type {
		case "message":
			wg.Add(1)
			go func(conv *conversation.Conversation, text string) {
				defer wg.Done()
				h.submit(ctx, c, conv, text)
			}(conv, msg.Content)
		case "close_alert":
			c.send("state", conv.CloseCrisisAlert())
		case "reset":
			state, ok := conv.Reset()
			if !ok {
				c.send("rejected", map[string]string{"reason": string(conversation.RejectBusy)})
			}
			c.send("state", state)
		case "ping":
			c.send("pong", nil)
		default:
			c.sendError("unsupported message type: " + msg.Type)
		}
	}
}

func (h *WebSocketHandler) submit(ctx context.Context, c *connection, conv *conversation.Conversation, text string) {
	outcome := conv.Submit(context.WithoutCancel(ctx), text)
	if !outcome.Accepted {
		c.send("rejected", map[string]string{"reason": string(outcome.Reason)})
		return
	}
	c.send("analysis", outcome.Analysis)
	c.send("state", outcome.State)
}

func pingLoop(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
