package llm

import (
	"github.com/smallbiznis/spendlens/internal/chat/domain"
	"github.com/smallbiznis/spendlens/internal/config"
	"go.uber.org/zap"
)

// New picks the completer for the configured provider.
func New(cfg config.Config, log *zap.Logger) domain.Completer {
	llmCfg := cfg.LLM
	log = log.Named("chat.llm")

	var completer domain.Completer
	switch llmCfg.Provider {
	case config.ProviderGemini:
		completer = NewGeminiClient(llmCfg.APIKey, orDefault(llmCfg.Model, geminiModel))
	case config.ProviderOpenAI:
		completer = NewOpenAIClient(config.ProviderOpenAI, llmCfg.APIKey,
			orDefault(llmCfg.BaseURL, openAIBaseURL), orDefault(llmCfg.Model, openAIModel), llmCfg.Timeout)
	default:
		completer = NewOpenAIClient(config.ProviderGroq, llmCfg.APIKey,
			orDefault(llmCfg.BaseURL, groqBaseURL), orDefault(llmCfg.Model, groqModel), llmCfg.Timeout)
	}

	if llmCfg.APIKey == "" {
		log.Warn("llm api key is not configured; chat requests will fail", zap.String("provider", completer.Provider()))
	} else {
		log.Info("llm provider configured", zap.String("provider", completer.Provider()))
	}
	return completer
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
