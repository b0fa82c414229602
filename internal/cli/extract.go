package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/voxsub/internal/audio"
	"github.com/fmueller/voxsub/internal/media"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExtractCmd(app *appState) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract <media-file>",
		Short: "Extract a mono 16 kHz WAV from a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("media file not found: %w", err)
			}

			if strings.TrimSpace(output) == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".wav"
			}
			if filepath.Clean(output) == filepath.Clean(input) {
				return fmt.Errorf("output %s would overwrite the input; pass --output", output)
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			extractFn := app.extractFn
			if extractFn == nil {
				extractFn = app.extractAudio
			}
			if err := extractFn(cmd.Context(), input, output); err != nil {
				return err
			}

			if info, err := audio.Inspect(output); err == nil {
				app.log().Info("audio extracted",
					zap.String("wav", output),
					zap.Duration("duration", info.Duration),
					zap.Int("sample_rate", info.SampleRate),
					zap.Int("channels", info.Channels),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "WAV file to write (default: media file with .wav extension)")
	return cmd
}

func (a *appState) extractAudio(ctx context.Context, input, output string) error {
	extractor, err := media.NewExtractor(a.ffmpegPath, a.log())
	if err != nil {
		return err
	}

	stop := startSpinner(a.progressEnabled(), "Extracting audio")
	defer stop()
	return extractor.ExtractWAV(ctx, input, output)
}
