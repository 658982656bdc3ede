package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/smallbiznis/spendlens/internal/chat/domain"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.0-flash"

// GeminiClient calls the Gemini API through the genai SDK. The SDK client is
// built on first use so a missing key only fails chat requests.
type GeminiClient struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

func (c *GeminiClient) Provider() string { return "gemini" }

func (c *GeminiClient) init(ctx context.Context) error {
	c.once.Do(func() {
		if c.apiKey == "" {
			c.initErr = fmt.Errorf("%w: gemini api key is not configured", domain.ErrUpstreamUnavailable)
			return
		}
		client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
			APIKey:  c.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			c.initErr = fmt.Errorf("%w: create genai client: %v", domain.ErrUpstreamUnavailable, err)
			return
		}
		c.client = client
	})
	return c.initErr
}

func (c *GeminiClient) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	if err := c.init(ctx); err != nil {
		return domain.Completion{}, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), cfg)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("%w: generate content: %v", domain.ErrUpstreamUnavailable, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return domain.Completion{}, fmt.Errorf("%w: empty response from model", domain.ErrUpstreamUnavailable)
	}
	return domain.Completion{Text: text, Model: c.model}, nil
}

var _ domain.Completer = (*GeminiClient)(nil)
