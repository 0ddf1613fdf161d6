package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uicapture/internal/infrastructure/config"
)

func newUploadCmd(conf func() *config.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Run one upload pass now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			a, err := wireApp(conf())
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			res, err := a.uploader.Pass(cmd.Context())
			if err != nil {
				a.logger.Error("Upload pass failed", zap.Error(err))
				return err
			}
			return render(cmd.OutOrStdout(), format, res)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatYAML, "output format: yaml or json")
	return cmd
}
