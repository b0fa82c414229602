package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fmueller/voxsub/internal/platform"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Whisper configures the speech-recognition engine and its model.
type Whisper struct {
	Path         string `toml:"path"`
	Model        string `toml:"model"`
	ModelDir     string `toml:"model_dir"`
	Language     string `toml:"language"`
	AutoDownload bool   `toml:"auto_download"`
}

type FFmpeg struct {
	Path string `toml:"path"`
}

// Subtitles controls how whisper output becomes an SRT document.
type Subtitles struct {
	Mode             string `toml:"mode"`
	StrictTimestamps bool   `toml:"strict_timestamps"`
	Echo             bool   `toml:"echo"`
}

type Audio struct {
	SilenceGate          bool    `toml:"silence_gate"`
	SilenceThresholdDBFS float64 `toml:"silence_threshold_dbfs"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Whisper   Whisper   `toml:"whisper"`
	FFmpeg    FFmpeg    `toml:"ffmpeg"`
	Subtitles Subtitles `toml:"subtitles"`
	Audio     Audio     `toml:"audio"`
	Logging   Logging   `toml:"logging"`
}

func DefaultConfigPath() (string, error) {
	return platform.DefaultConfigPath()
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields the defaults with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strictErr *toml.StrictMissingError
			if errors.As(err, &strictErr) {
				return nil, "", false, fmt.Errorf("parse config %s: %s", resolvedPath, strictErr.String())
			}
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}

	expanded, err := platform.ExpandHome(path)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// CreateSample writes the commented sample configuration. An existing file
// is only replaced when force is set.
func CreateSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
