package cli

import (
	"fmt"

	"github.com/GriffinCanCode/uicapture/internal/codec"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/config"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/logging"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uicapture/internal/providers/collector"
	"github.com/GriffinCanCode/uicapture/internal/store"
	"github.com/GriffinCanCode/uicapture/internal/upload"
)

// app holds the components shared by every command
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	store    *store.Store
	client   *collector.Client
	uploader *upload.Coordinator
	api      *upload.APIStatus
}

// logConfig starts from the logging preset for the mode and applies the level
func logConfig(cfg config.LogConfig) logging.Config {
	lc := logging.DefaultConfig()
	if cfg.Development {
		lc = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		lc.Level = cfg.Level
	}
	return lc
}

func wireApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(logConfig(cfg.Logging))
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	c, err := codec.New(cfg.Store.Compression)
	if err != nil {
		return nil, err
	}

	st, err := store.New(store.Options{
		Dir:         cfg.Store.Dir,
		Codec:       c,
		UniqueNames: cfg.Store.UniqueNames,
		Logger:      logger.Logger,
	})
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()

	clientOpts := collector.DefaultOptions(cfg.Upload.Endpoint)
	clientOpts.Timeout = cfg.Upload.Timeout
	clientOpts.RateLimit = cfg.Upload.RateLimit
	clientOpts.TripAfter = cfg.Upload.BreakerTrip
	clientOpts.OpenTimeout = cfg.Upload.BreakerOpen
	clientOpts.Logger = logger.Logger
	client := collector.NewClient(clientOpts)

	api := upload.NewAPIStatus(metrics)

	upOpts := upload.DefaultOptions()
	upOpts.MaxAttempts = cfg.Upload.MaxAttempts
	upOpts.RetryDelay = cfg.Upload.RetryDelay
	upOpts.Grace = cfg.Upload.Grace
	upOpts.Retention = cfg.Store.Retention
	upOpts.DeviceName = cfg.Upload.DeviceName
	upOpts.OnOnline = api.MarkOnline
	upOpts.OnOffline = api.MarkOffline
	upOpts.Metrics = metrics
	upOpts.Logger = logger.Logger

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		store:    st,
		client:   client,
		uploader: upload.NewCoordinator(st, client, upOpts),
		api:      api,
	}, nil
}
