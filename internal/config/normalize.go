package config

import (
	"fmt"
	"strings"

	"github.com/fmueller/voxsub/internal/language"
	"github.com/fmueller/voxsub/internal/platform"
)

func (c *Config) normalize() error {
	var err error
	if c.Whisper.Path, err = expandPath(c.Whisper.Path); err != nil {
		return fmt.Errorf("whisper.path: %w", err)
	}
	if c.Whisper.ModelDir, err = expandPath(c.Whisper.ModelDir); err != nil {
		return fmt.Errorf("whisper.model_dir: %w", err)
	}
	if c.FFmpeg.Path, err = expandPath(c.FFmpeg.Path); err != nil {
		return fmt.Errorf("ffmpeg.path: %w", err)
	}

	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if lang := strings.TrimSpace(c.Whisper.Language); lang != "" {
		normalized, err := language.Normalize(lang)
		if err != nil {
			return fmt.Errorf("whisper.language: %w", err)
		}
		c.Whisper.Language = normalized
	}

	c.Subtitles.Mode = strings.ToLower(strings.TrimSpace(c.Subtitles.Mode))
	if c.Subtitles.Mode == "" {
		c.Subtitles.Mode = ModeStream
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = FormatConsole
	}
	return nil
}

func expandPath(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	return platform.ExpandHome(value)
}
