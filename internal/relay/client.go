package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erickai/companion/backend/internal/model/chat"
)

var ErrUnavailable = errors.New("relay unavailable")

// ErrEmptyReply is returned when the relay answered 2xx without content.
var ErrEmptyReply = errors.New("relay returned no content")

// StatusError reports a non-2xx answer from the relay.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("relay responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("relay responded with status %d: %s", e.StatusCode, e.Message)
}

// Client calls a remote relay's POST /chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient targets baseURL, e.g. "http://localhost:3000".
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Complete posts the turns and returns choices[0].message.content.
func (c *Client) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	body, err := json.Marshal(CompletionRequest{Messages: turns})
	if err != nil {
		return "", fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody ErrorResponse
		_ = json.Unmarshal(payload, &errBody)
		return "", &StatusError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	var completion CompletionResponse
	if err := json.Unmarshal(payload, &completion); err != nil {
		return "", fmt.Errorf("failed to decode relay response: %w", err)
	}

	content := completion.Content()
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyReply
	}

	c.logger.Debug("relay reply received",
		zap.String("model", completion.Model),
		zap.Duration("elapsed", time.Since(start)))
	return content, nil
}

// Unavailable is the relay used when nothing is configured. Every call
// fails, so conversations answer with the persona's fallback line.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, []chat.Turn) (string, error) {
	return "", ErrUnavailable
}
