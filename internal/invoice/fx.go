package invoice

import (
	"github.com/smallbiznis/spendlens/internal/invoice/repository"
	"github.com/smallbiznis/spendlens/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
