package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/config"
	"github.com/gigboard/backend/internal/infra/logger"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("APP_CONFIG"), "path to config yaml")
	dsn := flag.String("dsn", "", "postgres dsn, overrides config")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	if *cfgPath == "" {
		*cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	if *dsn != "" {
		cfg.Postgres.DSN = *dsn
	}

	log, err := logger.New(cfg.Log.Level, cfg.Env)
	if err != nil {
		panic(err)
	}
	log = log.Named("migrate")
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	applied, err := pgrepo.Migrate(ctx, pool)
	if err != nil {
		log.Fatal("apply migrations", zap.Strings("applied", applied), zap.Error(err))
	}
	if len(applied) == 0 {
		log.Info("schema is up to date")
		return
	}
	log.Info("migrations applied", zap.Strings("versions", applied))
}
