package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/config"
	"github.com/mamadbah2/livestock/internal/repository/sheets"
	"github.com/mamadbah2/livestock/internal/repository/store"
	"github.com/mamadbah2/livestock/internal/scheduler"
	"github.com/mamadbah2/livestock/internal/server/handlers"
	"github.com/mamadbah2/livestock/internal/server/router"
	authsvc "github.com/mamadbah2/livestock/internal/service/auth"
	exportsvc "github.com/mamadbah2/livestock/internal/service/export"
	"github.com/mamadbah2/livestock/internal/service/records"
	recurrencesvc "github.com/mamadbah2/livestock/internal/service/recurrence"
	reportingsvc "github.com/mamadbah2/livestock/internal/service/reporting"
	"github.com/mamadbah2/livestock/pkg/clients/weather"
	"github.com/mamadbah2/livestock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.Development()))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	db, err := store.Open(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	engine := records.NewEngine(db, baseLogger.Named("svc.records"))
	authService := authsvc.NewService(db, cfg.Auth, baseLogger.Named("svc.auth"))
	reportingService := reportingsvc.NewService(engine, baseLogger.Named("svc.reporting"))

	var writer sheets.Writer
	if cfg.Sheets.CredentialsPath != "" {
		sheetWriter, err := sheets.NewGoogleSheetWriter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets writer", zap.Error(err))
		}
		writer = sheetWriter
		baseLogger.Info("google sheets export enabled")
	} else {
		baseLogger.Warn("google sheets credentials missing, export disabled")
	}
	exportService := exportsvc.NewService(engine, writer, baseLogger.Named("svc.export"))

	var weatherClient weather.Client
	if cfg.Weather.Enabled {
		weatherClient = weather.NewClient(cfg.Weather)
	} else {
		baseLogger.Warn("weather integration disabled, forecast route returns 501")
	}

	httpEngine := router.New(router.Deps{
		Engine:         engine,
		Auth:           authService,
		Reporting:      reportingService,
		Export:         exportService,
		Weather:        weatherClient,
		Options:        handlers.Options{ExposeErrors: cfg.Server.ExposeErrors},
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, baseLogger.Named("router"))

	recurrenceService := recurrencesvc.NewService(db, engine, baseLogger.Named("svc.recurrence"))
	sched, err := scheduler.NewScheduler(cfg.Scheduler, recurrenceService, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
