package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/spendlens/internal/config"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/spendlens/internal/invoice/repository"
	"github.com/smallbiznis/spendlens/internal/migration"
	"github.com/smallbiznis/spendlens/internal/observability"
	"github.com/smallbiznis/spendlens/internal/seed"
	"github.com/smallbiznis/spendlens/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDataPath = "data/Analytics_Test_Data.json"

func main() {
	var (
		file     = flag.String("file", defaultDataPath, "JSON array of invoices to load")
		count    = flag.Int("count", 50, "number of sample invoices to generate when the file is missing")
		rngSeed  = flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for generated invoices")
		noReset  = flag.Bool("keep", false, "keep existing rows instead of wiping all tables first")
		generate = flag.Bool("generate", false, "ignore the file and generate sample invoices")
	)
	flag.Parse()

	var (
		conn *gorm.DB
		log  *zap.Logger
		node *snowflake.Node
		repo invoicedomain.Repository
	)
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		fx.Provide(invoicerepo.Provide),
		fx.Populate(&conn, &log, &node, &repo),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		os.Stderr.WriteString("seed: start failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	err := run(context.Background(), seed.New(conn, log, node, repo), log, *file, *count, *rngSeed, !*noReset, *generate)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = app.Stop(stopCtx)

	if err != nil {
		log.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, seeder *seed.Seeder, log *zap.Logger, file string, count int, rngSeed uint64, reset, generate bool) error {
	docs, err := documents(log, file, count, rngSeed, generate)
	if err != nil {
		return err
	}

	if reset {
		log.Info("clearing existing data")
		if err := seeder.Reset(ctx); err != nil {
			return err
		}
	}

	log.Info("processing invoices", zap.Int("count", len(docs)))
	_, err = seeder.Load(ctx, docs)
	return err
}

func documents(log *zap.Logger, file string, count int, rngSeed uint64, generate bool) ([]seed.Document, error) {
	if !generate {
		docs, err := seed.LoadFile(file)
		if err == nil {
			log.Info("loaded seed file", zap.String("path", file))
			return docs, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Warn("seed file not found, generating sample data", zap.String("path", file))
	}
	return seed.Generate(count, rngSeed, time.Now()), nil
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
