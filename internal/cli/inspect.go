package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uicapture/internal/codec"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/config"
	"github.com/GriffinCanCode/uicapture/internal/shared/types"
	"github.com/GriffinCanCode/uicapture/internal/store"
)

func newInspectCmd(conf func() *config.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode an event file",
		Long:  "Decode an event file to JSON or YAML. <file> is a path, or a bare event name resolved inside the storage directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			rec, err := loadRecord(conf(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, rec)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatYAML, "output format: yaml or json")
	return cmd
}

// loadRecord decodes target as a path first, then as a stored event name
func loadRecord(cfg *config.Config, target string) (*types.CaptureRecord, error) {
	data, err := os.ReadFile(target)
	if err == nil {
		c, err := codec.New("")
		if err != nil {
			return nil, err
		}
		rec, err := c.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", target, err)
		}
		return rec, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	st, err := store.New(store.Options{Dir: cfg.Store.Dir})
	if err != nil {
		return nil, err
	}
	return st.Load(target)
}
