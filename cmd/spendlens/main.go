package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/spendlens/internal/analytics"
	"github.com/smallbiznis/spendlens/internal/chat"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/cloudmetrics"
	"github.com/smallbiznis/spendlens/internal/config"
	"github.com/smallbiznis/spendlens/internal/export"
	"github.com/smallbiznis/spendlens/internal/invoice"
	"github.com/smallbiznis/spendlens/internal/migration"
	"github.com/smallbiznis/spendlens/internal/observability"
	"github.com/smallbiznis/spendlens/internal/ratelimit"
	"github.com/smallbiznis/spendlens/internal/scheduler"
	"github.com/smallbiznis/spendlens/internal/server"
	"github.com/smallbiznis/spendlens/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional Domains
		invoice.Module,
		analytics.Module,
		chat.Module,
		export.Module,
		scheduler.Module,

		// Edge
		ratelimit.Module,
		cloudmetrics.Module,
		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
