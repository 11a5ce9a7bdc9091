package chat

import (
	"time"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is one logged utterance. It is never mutated after creation.
type Message struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Emotion   emotion.Label `json:"emotion,omitempty"`
}

// Turn strips a message down to what the model relay receives.
func (m Message) Turn() Turn {
	return Turn{Role: m.Role, Content: m.Content}
}

// Turn is a role/content pair forwarded to the model.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
