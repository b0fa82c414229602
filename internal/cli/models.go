package cli

import (
	"fmt"
	"strings"

	"github.com/fmueller/voxsub/internal/language"
	"github.com/fmueller/voxsub/internal/whisper"
	"github.com/spf13/cobra"
)

func newModelsCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known whisper models and whether they are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelDir, err := app.modelStorageDir()
			if err != nil {
				return err
			}

			statuses, err := whisper.ListStatus(modelDir)
			if err != nil {
				return err
			}

			table := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				name := status.Name
				if name == app.model {
					name += " *"
				}
				installed := "no"
				size := "-"
				if status.Installed {
					installed = "yes"
					size = formatBytes(status.SizeBytes)
				}
				table = append(table, []string{name, status.FileName, installed, size})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Model", "File", "Installed", "Size"},
				table,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "Model directory: %s\n", modelDir)
			return nil
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the spoken languages voxsub accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := [][]string{{language.Auto, language.DisplayName(language.Auto), ""}}
			for _, code := range language.Supported() {
				rows = append(rows, []string{code, language.DisplayName(code), language.NativeName(code)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Code", "Language", "Native"}, rows, nil))
			return nil
		},
	}
}

func joinModelNames() string {
	return strings.Join(whisper.ModelNames(), ", ")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
