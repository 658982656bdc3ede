package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	"github.com/smallbiznis/spendlens/internal/migration"
	"github.com/smallbiznis/spendlens/internal/observability"
	"github.com/smallbiznis/spendlens/internal/scheduler"
	"github.com/smallbiznis/spendlens/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// The scheduler binary runs background jobs without the HTTP surface, so the
// API can keep SCHEDULER_ENABLED off and leave sweeps to a single worker.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		scheduler.Module,
		fx.Decorate(func(cfg scheduler.Config) scheduler.Config {
			cfg.Enabled = true
			return cfg
		}),

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(3)
	if err != nil {
		panic(err)
	}
	return node
}
