package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultBaseURL is the Hugging Face OpenAI-compatible router.
const DefaultBaseURL = "https://router.huggingface.co/v1"

// DefaultModel runs Llama 3.1 8B Instruct on the fireworks-ai provider.
const DefaultModel = "meta-llama/Llama-3.1-8B-Instruct:fireworks-ai"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4096

// Config holds configuration for a Client.
type Config struct {
	// BaseURL is the API root; "/chat/completions" is appended.
	// Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is sent as a bearer token. Required.
	APIKey string

	// Model is used when a Request does not name one. Defaults to
	// DefaultModel.
	Model string

	// HTTPClient is used for all requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client sends chat completion requests.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config Config) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:   baseURL + "/chat/completions",
		apiKey:     config.APIKey,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model returns the default model name.
func (client *Client) Model() string {
	return client.model
}

// Complete sends request and blocks until the full response is available.
func (client *Client) Complete(ctx context.Context, request Request) (*Response, error) {
	wireRequest := client.buildRequest(request)

	body, err := json.Marshal(wireRequest)
	if err != nil {
		return nil, fmt.Errorf("llm: marshaling request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Accept", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+client.apiKey)

	client.logger.Debug("llm request",
		"model", wireRequest.Model,
		"messages", len(wireRequest.Messages),
		"max_tokens", wireRequest.MaxTokens,
	)

	httpResponse, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("llm: sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, readProviderError(httpResponse)
	}

	var wireResp chatResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&wireResp); err != nil {
		return nil, fmt.Errorf("llm: decoding response: %w", err)
	}

	response, err := wireResp.toResponse()
	if err != nil {
		return nil, err
	}

	client.logger.Debug("llm response",
		"model", response.Model,
		"finish_reason", response.FinishReason,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
	)
	return response, nil
}

// buildRequest converts a Request to the wire format. The system prompt
// becomes the first message with role "system".
func (client *Client) buildRequest(request Request) chatRequest {
	model := request.Model
	if model == "" {
		model = client.model
	}

	wireRequest := chatRequest{
		Model:       model,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
	}
	if request.System != "" {
		wireRequest.Messages = append(wireRequest.Messages, chatMessage{
			Role:    RoleSystem,
			Content: request.System,
		})
	}
	for _, message := range request.Messages {
		wireRequest.Messages = append(wireRequest.Messages, chatMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}
	return wireRequest
}

// readProviderError parses an error body. OpenAI-style APIs return
// {"error":{"type":"...","message":"..."}}; the Hugging Face router may
// also return {"error":"..."}.
func readProviderError(httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, maxErrorBody))

	var structured struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &structured) == nil && structured.Error.Message != "" {
		return &ProviderError{
			StatusCode: httpResponse.StatusCode,
			Type:       structured.Error.Type,
			Message:    structured.Error.Message,
		}
	}

	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return &ProviderError{
			StatusCode: httpResponse.StatusCode,
			Message:    flat.Error,
		}
	}

	return &ProviderError{
		StatusCode: httpResponse.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}
