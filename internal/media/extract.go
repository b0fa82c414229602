package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

const (
	SampleRate = 16000
	Channels   = 1
)

var ErrFFmpegNotFound = errors.New("ffmpeg not found")

type Extractor struct {
	FFmpegPath string
	Logger     *zap.Logger
}

// NewExtractor resolves ffmpeg from override, VOXSUB_FFMPEG_PATH, then PATH.
func NewExtractor(override string, logger *zap.Logger) (*Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path, err := resolveFFmpeg(override)
	if err != nil {
		return nil, err
	}
	return &Extractor{FFmpegPath: path, Logger: logger}, nil
}

func resolveFFmpeg(override string) (string, error) {
	for _, candidate := range []string{override, os.Getenv("VOXSUB_FFMPEG_PATH")} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		resolved, err := exec.LookPath(candidate)
		if err != nil {
			return "", fmt.Errorf("%w at %s: %v", ErrFFmpegNotFound, candidate, err)
		}
		return resolved, nil
	}

	resolved, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("%w on PATH; install ffmpeg or set VOXSUB_FFMPEG_PATH", ErrFFmpegNotFound)
	}
	return resolved, nil
}

// ExtractArgs is the ffmpeg argument list that turns input into 16-bit mono 16kHz WAV.
func ExtractArgs(input, output string) []string {
	return ffmpeg.Input(input).
		Output(output, ffmpeg.KwArgs{
			"vn":     "",
			"ac":     fmt.Sprint(Channels),
			"ar":     fmt.Sprint(SampleRate),
			"acodec": "pcm_s16le",
		}).
		OverWriteOutput().
		GetArgs()
}

func (e *Extractor) ExtractWAV(ctx context.Context, input, output string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("input path is required")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("output path is required")
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("media file not found: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	args := append([]string{"-nostdin", "-hide_banner", "-loglevel", "error"}, ExtractArgs(input, output)...)
	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr

	logger.Debug("running ffmpeg", zap.String("ffmpeg", e.FFmpegPath), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("ffmpeg returned status %d; did you enter a valid video file? (%s)", exitErr.ExitCode(), lastLine(stderr.String()))
		}
		return fmt.Errorf("run ffmpeg: %w", err)
	}

	return nil
}

// SubtitlePath places the subtitle file next to the media file.
func SubtitlePath(mediaPath string) string {
	return strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".srt"
}

func lastLine(output string) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "no output"
	}
	lines := strings.Split(trimmed, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
