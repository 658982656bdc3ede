package chat

import (
	"github.com/smallbiznis/spendlens/internal/chat/llm"
	"github.com/smallbiznis/spendlens/internal/chat/repository"
	"github.com/smallbiznis/spendlens/internal/chat/service"
	"go.uber.org/fx"
)

var Module = fx.Module("chat.service",
	fx.Provide(llm.New),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
