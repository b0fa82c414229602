package config

import "github.com/fmueller/voxsub/internal/whisper"

const (
	ModeStream = "stream"
	ModeBatch  = "batch"

	FormatConsole = "console"
	FormatJSON    = "json"

	DefaultSilenceThresholdDBFS = -50.0
)

// Default returns the configuration used when no file exists. An empty
// Whisper.Language means prompt interactively, or auto-detect otherwise.
func Default() Config {
	return Config{
		Whisper: Whisper{
			Model: whisper.DefaultModel,
		},
		Subtitles: Subtitles{
			Mode: ModeStream,
		},
		Audio: Audio{
			SilenceThresholdDBFS: DefaultSilenceThresholdDBFS,
		},
		Logging: Logging{
			Level:  "info",
			Format: FormatConsole,
		},
	}
}
