package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nurpe/maintenance-tracker/internal/auth"
	"github.com/nurpe/maintenance-tracker/internal/config"
	"github.com/nurpe/maintenance-tracker/internal/db"
	"github.com/nurpe/maintenance-tracker/internal/excel"
	httphandler "github.com/nurpe/maintenance-tracker/internal/http"
	"github.com/nurpe/maintenance-tracker/internal/http/middleware"
	"github.com/nurpe/maintenance-tracker/internal/logger"
	"github.com/nurpe/maintenance-tracker/internal/pdf"
	"github.com/nurpe/maintenance-tracker/internal/remote"
	"github.com/nurpe/maintenance-tracker/internal/repository"
	"github.com/nurpe/maintenance-tracker/internal/schedule"
	"github.com/nurpe/maintenance-tracker/internal/service"
	"github.com/nurpe/maintenance-tracker/internal/storage"
	"github.com/nurpe/maintenance-tracker/internal/syncstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)
	ctx := context.Background()

	var rs remote.Store
	switch cfg.RemoteDriver {
	case config.RemoteDriverMemory:
		log.Warn().Msg("using in-memory remote store, data is lost on restart")
		rs = remote.NewMemory(syncstore.Collections()...)
	default:
		database, err := db.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		rs = repository.NewTableStore(database, repository.DefaultSchema)
	}

	handlerOpts := []httphandler.Option{httphandler.WithMaxUploadBytes(cfg.Maintenance.MaxUploadBytes)}
	var blobs syncstore.BlobStorage
	if cfg.BlobsInMemory() {
		log.Warn().Msg("S3 is not configured, budget documents are kept in memory")
		memory := storage.NewMemory(cfg.HTTP.PublicURL + "/blobs")
		blobs = memory
		handlerOpts = append(handlerOpts, httphandler.WithBlobReader(memory))
	} else {
		bucket, err := storage.NewS3(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init blob storage")
		}
		blobs = bucket
	}

	calendar := schedule.NewCalendar(cfg.Maintenance.Location)
	store := syncstore.New(rs, calendar, blobs, log)
	if err := store.Load(ctx); err != nil {
		log.Error().Err(err).Msg("initial load incomplete, affected collections start empty")
	}

	dashboard := service.NewDashboardService(store)
	reports := service.NewReportService(store, pdf.NewGenerator(cfg.Maintenance.Location), excel.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(store, dashboard, reports, log, handlerOpts...)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("remote", cfg.RemoteDriver).Msg("starting maintenance service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
