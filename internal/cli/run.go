package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	adminhttp "github.com/GriffinCanCode/uicapture/internal/api/http"
	"github.com/GriffinCanCode/uicapture/internal/domain/monitor"
	"github.com/GriffinCanCode/uicapture/internal/domain/schedule"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/config"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/server"
	"github.com/GriffinCanCode/uicapture/internal/providers/uitree"
)

type runFlags struct {
	source string
	poll   time.Duration
	admin  bool
}

func newRunCmd(conf func() *config.Config) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture, persist and upload until interrupted",
		Long: "Run the capture pipeline. Frames are read from a JSON or YAML tree dump " +
			"(--source) whenever it changes; snapshots are saved by the adaptive scheduler " +
			"and the fixed cadence, and uploaded once per minute.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := conf()
			if cmd.Flags().Changed("poll") {
				cfg.Source.PollInterval = flags.poll
			}
			if cmd.Flags().Changed("admin") {
				cfg.Admin.Enabled = flags.admin
			}
			return runPipeline(cmd.Context(), cfg, flags.source)
		},
	}
	cmd.Flags().StringVar(&flags.source, "source", "", "tree dump file to watch (.json, .yaml or .yml)")
	cmd.Flags().DurationVar(&flags.poll, "poll", 0, "tree dump poll interval (SOURCE_POLL_INTERVAL)")
	cmd.Flags().BoolVar(&flags.admin, "admin", false, "serve the admin API (ADMIN_ENABLED)")
	return cmd
}

func runPipeline(ctx context.Context, cfg *config.Config, source string) error {
	if source != "" {
		if _, err := uitree.FormatFor(source); err != nil {
			return err
		}
	}

	a, err := wireApp(cfg)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	log := a.logger.Logger
	log.Info("Starting uicapture",
		zap.String("version", Version),
		zap.String("dir", a.store.Root()),
		zap.String("endpoint", a.client.Endpoint()),
	)

	mgr := monitor.NewManager(monitor.Config{
		Schedule: schedule.Settings{
			MinInterval:  cfg.Capture.MinInterval,
			MaxInterval:  cfg.Capture.MaxInterval,
			StaticAfter:  cfg.Capture.StaticAfter,
			StaticDelay:  cfg.Capture.StaticDelay,
			DynamicDelay: cfg.Capture.DynamicDelay,
		},
		Cadence:         cfg.Capture.Cadence,
		AdaptiveEnabled: cfg.Capture.AdaptiveEnabled,
		CadenceEnabled:  cfg.Capture.CadenceEnabled,
		Display:         schedule.AlwaysOn,
	}, a.store, a.uploader, log).WithMetrics(a.metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mgr.Run(gctx) })

	if source != "" {
		w := uitree.NewWatcher(source, cfg.Source.PollInterval, mgr.OnFrame, log)
		g.Go(func() error { return w.Run(gctx) })
	} else {
		log.Warn("No --source given; no frames will be captured")
	}

	if cfg.Admin.Enabled {
		adminhttp.Version = Version
		handlers := adminhttp.NewHandlers(mgr, a.uploader, a.store, a.metrics, log).WithAPIStatus(a.api)
		srv := server.New(cfg.Admin, cfg.Logging.Development, handlers, a.metrics, log)
		g.Go(func() error { return srv.Run(gctx) })
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = nil
	}
	log.Info("uicapture stopped", zap.Error(err))
	return err
}
