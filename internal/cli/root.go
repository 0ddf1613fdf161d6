package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uicapture/internal/infrastructure/config"
)

// Build information, set by the linker
var (
	Version = "dev"
	Commit  = "none"
)

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

type globalFlags struct {
	dir         string
	compression string
	endpoint    string
	logLevel    string
	dev         bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	var flags globalFlags
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "uicapture",
		Short:         "Capture on-screen UI text and upload it to a collector",
		Long:          "uicapture extracts text from UI trees, stores compressed snapshots locally and uploads them in batches.",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, &flags, loaded)
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dir, "dir", "", "event storage directory (STORE_DIR)")
	pf.StringVar(&flags.compression, "compression", "", "compression for new files: lz4, zstd or s2 (STORE_COMPRESSION)")
	pf.StringVar(&flags.endpoint, "endpoint", "", "collector URL (UPLOAD_ENDPOINT)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	pf.BoolVar(&flags.dev, "dev", false, "human-readable logs (LOG_DEV)")

	conf := func() *config.Config { return cfg }
	root.AddCommand(
		newRunCmd(conf),
		newUploadCmd(conf),
		newListCmd(conf),
		newInspectCmd(conf),
	)
	return root
}

// applyFlags overrides cfg with the flags the user set explicitly
func applyFlags(cmd *cobra.Command, f *globalFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("dir") {
		cfg.Store.Dir = f.dir
	}
	if changed("compression") {
		cfg.Store.Compression = f.compression
	}
	if changed("endpoint") {
		cfg.Upload.Endpoint = f.endpoint
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("dev") {
		cfg.Logging.Development = f.dev
	}
}
