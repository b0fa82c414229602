package config

import (
	"errors"
	"fmt"

	"github.com/fmueller/voxsub/internal/logging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Subtitles.Mode {
	case ModeStream, ModeBatch:
	default:
		errs = append(errs, fmt.Errorf("subtitles.mode must be %q or %q, got %q", ModeStream, ModeBatch, c.Subtitles.Mode))
	}

	switch c.Logging.Format {
	case FormatConsole, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format must be %q or %q, got %q", FormatConsole, FormatJSON, c.Logging.Format))
	}

	if _, err := logging.ResolveLevel(logging.Options{Level: c.Logging.Level}); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	if c.Audio.SilenceThresholdDBFS > 0 || c.Audio.SilenceThresholdDBFS < -120 {
		errs = append(errs, fmt.Errorf("audio.silence_threshold_dbfs must be between -120 and 0, got %g", c.Audio.SilenceThresholdDBFS))
	}

	return errors.Join(errs...)
}
