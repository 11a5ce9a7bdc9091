package relay

import "github.com/erickai/companion/backend/internal/model/chat"

// CompletionRequest is the body accepted by POST /chat.
type CompletionRequest struct {
	Messages []chat.Turn `json:"messages"`
}

// CompletionResponse mirrors the chat.completion object returned by
// OpenAI-compatible servers, trimmed to the fields clients read.
type CompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Choice is one generated alternative.
type Choice struct {
	Index        int       `json:"index"`
	Message      chat.Turn `json:"message"`
	FinishReason string    `json:"finish_reason"`
}

// Content returns the first choice's text, or "" when there is none.
func (r CompletionResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ErrorResponse is the JSON body of every non-2xx relay reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
