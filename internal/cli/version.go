package cli

import (
	"fmt"

	"github.com/fmueller/voxsub/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		// Version output must work even with a broken config file.
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.Current().Detailed())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "voxsub v%s\n", version.Resolve())
			return nil
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include commit, build date and platform")
	return cmd
}
