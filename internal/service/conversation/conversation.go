package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
	"github.com/erickai/companion/backend/internal/model/chat"
	"github.com/erickai/companion/backend/internal/model/persona"
)

// Relay forwards the ordered prompt to a language model and returns the
// generated reply. Any error is treated as one generic failure.
type Relay interface {
	Complete(ctx context.Context, turns []chat.Turn) (string, error)
}

// RejectReason explains why a submission left the state untouched.
type RejectReason string

const (
	RejectEmpty RejectReason = "empty"
	RejectBusy  RejectReason = "busy"
)

// State is a read-only copy of the conversation for presentation.
type State struct {
	Messages            []chat.Message `json:"messages"`
	Busy                bool           `json:"isBusy"`
	CrisisModeActive    bool           `json:"crisisModeActive"`
	CrisisAlertVisible  bool           `json:"crisisAlertVisible"`
	LastDetectedEmotion emotion.Label  `json:"lastDetectedEmotion"`
}

// Outcome describes what one Submit did.
type Outcome struct {
	Accepted    bool              `json:"accepted"`
	Reason      RejectReason      `json:"reason,omitempty"`
	Analysis    *emotion.Analysis `json:"analysis,omitempty"`
	UserMessage *chat.Message     `json:"userMessage,omitempty"`
	Reply       *chat.Message     `json:"reply,omitempty"`
	RelayFailed bool              `json:"relayFailed,omitempty"`
	State       State             `json:"state"`
}

// Config tunes a Conversation. Zero values fall back to the defaults.
type Config struct {
	Analyzer *emotion.Analyzer
	Persona  *persona.Persona
	Logger   *zap.Logger
	Now      func() time.Time
}

// Conversation owns one session's message log and flags. All mutation goes
// through its methods.
type Conversation struct {
	relay        Relay
	analyzer     *emotion.Analyzer
	persona      persona.Persona
	systemPrompt string
	logger       *zap.Logger
	now          func() time.Time

	mu    sync.RWMutex
	state State
}

// New starts a conversation holding only the persona's opening line.
func New(relay Relay, cfg Config) *Conversation {
	c := &Conversation{
		relay:    relay,
		analyzer: cfg.Analyzer,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if c.analyzer == nil {
		c.analyzer = emotion.NewAnalyzer(emotion.DefaultLexicon())
	}
	if cfg.Persona != nil {
		c.persona = *cfg.Persona
	} else {
		c.persona = persona.Erick()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	c.systemPrompt = persona.BuildSystemPrompt(c.persona)

	c.state = State{
		Messages:            []chat.Message{c.newMessage(chat.RoleAssistant, c.persona.OpeningLine, "")},
		LastDetectedEmotion: emotion.Neutral,
	}
	return c
}

// Submit classifies text, records it, asks the relay for a reply and records
// that too. Relay failures become a scripted apology; they are never
// returned to the caller.
func (c *Conversation) Submit(ctx context.Context, text string) Outcome {
	c.mu.Lock()
	if strings.TrimSpace(text) == "" {
		state := c.snapshotLocked()
		c.mu.Unlock()
		return Outcome{Reason: RejectEmpty, State: state}
	}
	if c.state.Busy {
		state := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Debug("submission rejected while awaiting reply")
		return Outcome{Reason: RejectBusy, State: state}
	}

	analysis := c.analyzer.Classify(text)
	if analysis.Matched() {
		c.state.LastDetectedEmotion = analysis.Primary
	}
	if analysis.IsCrisis {
		if !c.state.CrisisModeActive {
			c.logger.Warn("crisis language detected, entering crisis mode")
		}
		c.state.CrisisModeActive = true
		c.state.CrisisAlertVisible = true
	}

	userMsg := c.newMessage(chat.RoleUser, text, analysis.Primary)
	prompt := c.buildPromptLocked(userMsg)
	c.state.Messages = append(c.state.Messages, userMsg)
	c.state.Busy = true
	c.mu.Unlock()

	c.logger.Info("user message recorded",
		zap.String("messageId", userMsg.ID),
		zap.String("emotion", string(analysis.Primary)),
		zap.String("intensity", string(analysis.Intensity)),
		zap.Float64("confidence", analysis.Confidence),
		zap.Bool("crisis", analysis.IsCrisis))

	reply, err := c.complete(ctx, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()

	relayFailed := err != nil
	var replyMsg chat.Message
	if relayFailed {
		c.logger.Error("relay call failed, using fallback reply", zap.Error(err))
		replyMsg = c.newMessage(chat.RoleAssistant, c.persona.FallbackLine, "")
	} else {
		replyMsg = c.newMessage(chat.RoleAssistant, reply, "")
		if c.analyzer.OffersHelp(reply) {
			c.logger.Info("assistant suggested professional help, showing crisis alert")
			c.state.CrisisAlertVisible = true
		}
	}
	c.state.Messages = append(c.state.Messages, replyMsg)
	c.state.Busy = false

	return Outcome{
		Accepted:    true,
		Analysis:    &analysis,
		UserMessage: &userMsg,
		Reply:       &replyMsg,
		RelayFailed: relayFailed,
		State:       c.snapshotLocked(),
	}
}

// complete calls the relay, turning a panic into an ordinary failure so the
// busy flag is always cleared.
func (c *Conversation) complete(ctx context.Context, prompt []chat.Turn) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("relay panicked: %v", r)
		}
	}()
	return c.relay.Complete(ctx, prompt)
}

// CloseCrisisAlert hides the alert. Crisis mode stays active.
func (c *Conversation) CloseCrisisAlert() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CrisisAlertVisible = false
	return c.snapshotLocked()
}

// Reset wipes the session back to a single greeting. It is a no-op while a
// reply is outstanding and reports false in that case.
func (c *Conversation) Reset() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Busy {
		c.logger.Debug("reset ignored while awaiting reply")
		return c.snapshotLocked(), false
	}

	c.state = State{
		Messages:            []chat.Message{c.newMessage(chat.RoleAssistant, c.persona.ResetLine, "")},
		LastDetectedEmotion: emotion.Neutral,
	}
	c.logger.Info("conversation reset")
	return c.snapshotLocked(), true
}

// Snapshot returns a copy of the current state.
func (c *Conversation) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Busy reports whether a relay call is outstanding.
func (c *Conversation) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Busy
}

// buildPromptLocked orders the system prompt, the prior log and the new user
// message. The system turn is never stored in the log.
func (c *Conversation) buildPromptLocked(userMsg chat.Message) []chat.Turn {
	turns := make([]chat.Turn, 0, len(c.state.Messages)+2)
	turns = append(turns, chat.Turn{Role: chat.RoleSystem, Content: c.systemPrompt})
	for _, msg := range c.state.Messages {
		turns = append(turns, msg.Turn())
	}
	return append(turns, userMsg.Turn())
}

func (c *Conversation) snapshotLocked() State {
	state := c.state
	state.Messages = make([]chat.Message, len(c.state.Messages))
	copy(state.Messages, c.state.Messages)
	return state
}

func (c *Conversation) newMessage(role chat.Role, content string, label emotion.Label) chat.Message {
	return chat.Message{
		ID:        newMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
		Emotion:   label,
	}
}

// newMessageID prefers time-ordered v7 identifiers.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
