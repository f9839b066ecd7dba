package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robml/dbaccounting/api/routes"
	"github.com/robml/dbaccounting/internal/accounts"
	"github.com/robml/dbaccounting/internal/accounttypes"
	"github.com/robml/dbaccounting/internal/ledger"
	"github.com/robml/dbaccounting/internal/reports"
	"github.com/robml/dbaccounting/pkg/config"
	"github.com/robml/dbaccounting/pkg/db"
	"github.com/robml/dbaccounting/pkg/logger"
	"github.com/robml/dbaccounting/pkg/metrics"
	"github.com/robml/dbaccounting/pkg/migrate"
	"github.com/robml/dbaccounting/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	accountTypesRepo := accounttypes.NewRepository(dbClient.DB())
	accountsRepo := accounts.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())

	accountTypeService, err := accounttypes.NewService(accountTypesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create account type service", err)
		os.Exit(1)
	}

	accountService, err := accounts.NewService(accountsRepo, accountTypeService)
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledgerRepo, dbClient, accountTypesRepo, accountsRepo, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(accountTypesRepo, accountsRepo, ledgerRepo, ledgerService)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			accountTypeService,
			accountService,
			ledgerService,
			reportService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
