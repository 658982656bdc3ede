package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/spendlens/internal/chat/domain"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	groqModel     = "llama-3.3-70b-versatile"
	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "gpt-4o-mini"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIClient speaks the OpenAI chat completions protocol, which Groq
// also serves.
type OpenAIClient struct {
	provider string
	apiKey   string
	baseURL  string
	model    string
	client   *http.Client
}

func NewOpenAIClient(provider, apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		provider: provider,
		apiKey:   strings.TrimSpace(apiKey),
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:    strings.TrimSpace(model),
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *OpenAIClient) Provider() string { return c.provider }

func (c *OpenAIClient) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	if c.apiKey == "" {
		return domain.Completion{}, fmt.Errorf("%w: %s api key is not configured", domain.ErrUpstreamUnavailable, c.provider)
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return domain.Completion{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.Completion{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Completion{}, fmt.Errorf("%w: %s api error: %s", domain.ErrUpstreamUnavailable, c.provider, errorMessage(resp))
	}

	var payload chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Completion{}, fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(payload.Choices) == 0 {
		return domain.Completion{}, fmt.Errorf("%w: %s returned no choices", domain.ErrUpstreamUnavailable, c.provider)
	}

	model := payload.Model
	if model == "" {
		model = c.model
	}
	return domain.Completion{Text: payload.Choices[0].Message.Content, Model: model}, nil
}

func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed chatErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && strings.TrimSpace(parsed.Error.Message) != "" {
		return fmt.Sprintf("%d %s", resp.StatusCode, strings.TrimSpace(parsed.Error.Message))
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return fmt.Sprintf("%d %s", resp.StatusCode, text)
	}
	return resp.Status
}

var _ domain.Completer = (*OpenAIClient)(nil)
