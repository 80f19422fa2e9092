package llm

import "fmt"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// UserMessage returns a Message with role "user".
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Request is a provider-neutral completion request.
type Request struct {
	// Model overrides the client default when set.
	Model string

	// System is sent as a leading system message.
	System string

	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// Usage reports token counts.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response is the first choice of a completion.
type Response struct {
	ID           string
	Model        string
	Text         string
	FinishReason string
	Usage        Usage
}

// ProviderError is returned when the API responds with a non-200 status.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (err *ProviderError) Error() string {
	if err.Type != "" {
		return fmt.Sprintf("llm: HTTP %d: %s: %s", err.StatusCode, err.Type, err.Message)
	}
	return fmt.Sprintf("llm: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsRateLimited returns true for HTTP 429.
func (err *ProviderError) IsRateLimited() bool {
	return err.StatusCode == 429
}

// --- wire types (OpenAI chat completions) ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason *string     `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

func (r *chatResponse) toResponse() (*Response, error) {
	if len(r.Choices) == 0 {
		return nil, fmt.Errorf("llm: response has no choices")
	}
	choice := r.Choices[0]

	response := &Response{
		ID:    r.ID,
		Model: r.Model,
		Text:  choice.Message.Content,
	}
	if choice.FinishReason != nil {
		response.FinishReason = *choice.FinishReason
	}
	if r.Usage != nil {
		response.Usage = Usage{
			InputTokens:  r.Usage.PromptTokens,
			OutputTokens: r.Usage.CompletionTokens,
		}
	}
	return response, nil
}
