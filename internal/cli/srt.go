package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/voxsub/internal/srt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSRTCmd(app *appState) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "srt <transcript-file|->",
		Short: "Convert saved whisper output into SRT subtitles",
		Long: "Reads whisper.cpp console output (one \"[start --> end]   text\" line per utterance)\n" +
			"from a file, or stdin when the argument is \"-\", and writes SRT subtitles.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := srt.ParseMode(app.mode)
			if err != nil {
				return err
			}

			var in io.Reader
			if args[0] == "-" {
				in = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open transcript: %w", err)
				}
				defer f.Close()
				in = f
			}

			out := cmd.OutOrStdout()
			var file *os.File
			if strings.TrimSpace(output) != "" && output != "-" {
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create subtitles file: %w", err)
				}
				defer f.Close()
				file = f
				out = f
			}

			parser := app.parser()
			cues, err := srt.ConvertReader(in, out, mode, parser)
			if err != nil {
				return err
			}
			if file != nil {
				if err := file.Close(); err != nil {
					return fmt.Errorf("close subtitles file: %w", err)
				}
			}

			app.log().Info("subtitles converted", zap.Int("cues", cues), zap.String("mode", string(mode)), zap.Stringer("timestamps", parser.Convention()))
			return nil
		},
	}

	bindSubtitleFlags(cmd, app)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Subtitle file to write (default: stdout)")
	return cmd
}
