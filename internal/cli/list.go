package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uicapture/internal/infrastructure/config"
	"github.com/GriffinCanCode/uicapture/internal/store"
)

func newListCmd(conf func() *config.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List event files awaiting upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "" {
				if err := validateFormat(format); err != nil {
					return err
				}
			}
			st, err := store.New(store.Options{Dir: conf().Store.Dir})
			if err != nil {
				return err
			}
			entries, err := st.List()
			if err != nil {
				return err
			}

			if format != "" {
				return render(cmd.OutOrStdout(), format, entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Name, e.Size, e.ModTime.Format(time.RFC3339))
			}
			fmt.Fprintf(tw, "%d file(s)\n", len(entries))
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "", "output as yaml or json instead of a table")
	return cmd
}
