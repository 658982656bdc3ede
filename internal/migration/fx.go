package migration

import (
	"context"

	"github.com/smallbiznis/spendlens/internal/config"
	"github.com/smallbiznis/spendlens/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(lc fx.Lifecycle, conn *gorm.DB, cfg config.Config, log *zap.Logger) {
		if !cfg.DBAutoMigrate || !cfg.HasDatabase() {
			return
		}
		log = log.Named("migration")
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				return Apply(conn, db.ConfigFrom(cfg), log)
			},
		})
	}),
)

// Apply brings the schema up to date using the strategy of the dialect.
func Apply(conn *gorm.DB, dbCfg db.Config, log *zap.Logger) error {
	dialect := dbCfg.ResolveType()
	if dialect != db.TypePostgres {
		log.Info("applying schema with gorm automigrate", zap.String("dialect", dialect))
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	log.Info("applying embedded sql migrations")
	return RunMigrations(sqlDB)
}
