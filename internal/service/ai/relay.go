package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/erickai/companion/backend/internal/config"
	"github.com/erickai/companion/backend/internal/model/chat"
)

var (
	ErrNotConfigured   = errors.New("model credentials not configured")
	ErrEmptyCompletion = errors.New("model returned an empty completion")
	ErrNoTurns         = errors.New("at least one message is required")
	ErrUnauthorized    = errors.New("model provider rejected the credentials")
	ErrQuotaExceeded   = errors.New("model provider quota exhausted")
)

var (
	authMarkers  = []string{"status code: 401", "authenticationerror", "invalidapikey", "invalid_api_key"}
	quotaMarkers = []string{"status code: 402", "quotaexceeded", "insufficient_quota", "accountoverdueerror"}
)

// Service relays role/content turns to a chat model and returns its reply.
type Service struct {
	modelName string
	chain     compose.Runnable[[]*schema.Message, *schema.Message]
	logger    *zap.Logger
}

// NewService builds the Ark chat model described by cfg.
func NewService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, cfg.Model, chatModel, logger)
}

// NewServiceWithModel wraps an existing chat model.
func NewServiceWithModel(ctx context.Context, modelName string, chatModel model.BaseChatModel, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		modelName: modelName,
		chain:     runnable,
		logger:    logger,
	}, nil
}

// ModelName reports the configured model identifier.
func (s *Service) ModelName() string {
	return s.modelName
}

// Complete sends turns in order and returns the generated text.
func (s *Service) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	if len(turns) == 0 {
		return "", ErrNoTurns
	}

	response, err := s.chain.Invoke(ctx, toSchemaMessages(turns))
	if err != nil {
		return "", classifyModelError(fmt.Errorf("failed to run chat chain: %w", err))
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyCompletion
	}

	s.logger.Debug("model reply generated",
		zap.String("model", s.modelName),
		zap.Int("turns", len(turns)),
		zap.Int("length", len(response.Content)))
	return response.Content, nil
}

// classifyModelError tags provider auth and billing failures so callers can
// tell them apart from transient errors. The provider error type is not
// reliably preserved through the chain, so matching is on the message.
func classifyModelError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range authMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
	}
	return err
}

func toSchemaMessages(turns []chat.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleSystem:
			messages = append(messages, schema.SystemMessage(turn.Content))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Content))
		}
	}
	return messages
}
