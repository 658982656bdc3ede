package domain

import "context"

//go:generate mockgen -destination=mock/completer.go -package=mock github.com/smallbiznis/spendlens/internal/chat/domain Completer

type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

type Completion struct {
	Text  string
	Model string
}

// Completer sends a two-turn prompt to a hosted chat model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Provider() string
}
