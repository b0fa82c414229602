package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmueller/voxsub/internal/audio"
	"github.com/fmueller/voxsub/internal/srt"
	"github.com/fmueller/voxsub/internal/transcript"
	"github.com/fmueller/voxsub/internal/whisper"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Extractor interface {
	ExtractWAV(ctx context.Context, input, output string) error
}

// Converter turns a media file into an SRT file: extract, transcribe, sequence.
type Converter struct {
	Extractor Extractor
	Engine    whisper.Engine
	Logger    *zap.Logger
	// TempDir holds the intermediate WAV. Empty means os.TempDir().
	TempDir string
}

type Request struct {
	MediaPath  string
	OutputPath string
	ModelPath  string
	Language   string
	Mode       srt.Mode
	Parser     transcript.Parser

	// Echo receives every raw whisper line when set.
	Echo io.Writer
	// OnCue is called with the running cue count after each cue.
	OnCue func(cues int)

	SilenceGate          bool
	SilenceThresholdDBFS float64
}

type Result struct {
	OutputPath string
	Lines      int
	Cues       int
	Silent     bool
	Audio      audio.Info
	Elapsed    time.Duration
}

func (c *Converter) Run(ctx context.Context, req Request) (Result, error) {
	if c.Extractor == nil || c.Engine == nil {
		return Result{}, errors.New("converter requires an extractor and a whisper engine")
	}
	if strings.TrimSpace(req.MediaPath) == "" {
		return Result{}, errors.New("media path is required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return Result{}, errors.New("output path is required")
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	result := Result{OutputPath: req.OutputPath}

	tempDir := c.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	wavPath := filepath.Join(tempDir, "voxsub-"+uuid.NewString()+".wav")
	defer func() {
		if err := os.Remove(wavPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove temporary audio", zap.String("path", wavPath), zap.Error(err))
		}
	}()

	logger.Debug("extracting audio", zap.String("media", req.MediaPath), zap.String("wav", wavPath))
	if err := c.Extractor.ExtractWAV(ctx, req.MediaPath, wavPath); err != nil {
		return result, err
	}

	info, err := audio.Inspect(wavPath)
	if err != nil {
		logger.Warn("could not inspect extracted audio", zap.String("wav", wavPath), zap.Error(err))
	} else {
		result.Audio = info
		logger.Debug("extracted audio",
			zap.Int("sample_rate", info.SampleRate),
			zap.Int("channels", info.Channels),
			zap.Duration("duration", info.Duration),
			zap.Float64("rms_dbfs", info.RMSdBFS),
		)
		if !info.IsNormalized() {
			logger.Warn("extracted audio is not mono 16 kHz; transcription quality may suffer",
				zap.Int("sample_rate", info.SampleRate),
				zap.Int("channels", info.Channels),
			)
		}
		if req.SilenceGate && info.Silent(req.SilenceThresholdDBFS) {
			logger.Warn("audio is silent, skipping transcription",
				zap.Float64("rms_dbfs", info.RMSdBFS),
				zap.Float64("threshold_dbfs", req.SilenceThresholdDBFS),
			)
			if err := os.WriteFile(req.OutputPath, nil, 0o644); err != nil {
				return result, fmt.Errorf("write subtitles: %w", err)
			}
			result.Silent = true
			result.Elapsed = time.Since(start)
			return result, nil
		}
	}

	transcription := whisper.TranscriptionRequest{
		AudioPath: wavPath,
		ModelPath: req.ModelPath,
		Language:  req.Language,
	}

	if req.Mode == srt.ModeBatch {
		err = c.runBatch(ctx, transcription, req, &result)
	} else {
		err = c.runStream(ctx, transcription, req, &result)
	}
	if err != nil {
		return result, err
	}

	result.Elapsed = time.Since(start)
	logger.Info("subtitles written",
		zap.String("output", result.OutputPath),
		zap.Int("cues", result.Cues),
		zap.Int("lines", result.Lines),
		zap.Stringer("timestamps", req.Parser.Convention()),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (c *Converter) runStream(ctx context.Context, tr whisper.TranscriptionRequest, req Request, result *Result) error {
	out, err := os.Create(req.OutputPath)
	if err != nil {
		return fmt.Errorf("create subtitles file: %w", err)
	}
	defer out.Close()

	sw := srt.NewStreamWriter(out, req.Parser)
	err = c.Engine.Transcribe(ctx, tr, func(line string) error {
		result.Lines++
		if err := echo(req.Echo, line); err != nil {
			return err
		}
		wrote, err := sw.WriteLine(line)
		if err != nil {
			return err
		}
		if wrote {
			result.Cues = sw.Count()
			if req.OnCue != nil {
				req.OnCue(result.Cues)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close subtitles file: %w", err)
	}
	return nil
}

func (c *Converter) runBatch(ctx context.Context, tr whisper.TranscriptionRequest, req Request, result *Result) error {
	batch := srt.NewBatch(req.Parser)
	err := c.Engine.Transcribe(ctx, tr, func(line string) error {
		result.Lines++
		if err := echo(req.Echo, line); err != nil {
			return err
		}
		if batch.AddLine(line) {
			result.Cues = batch.Count()
			if req.OnCue != nil {
				req.OnCue(result.Cues)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(req.OutputPath, []byte(batch.Document()), 0o644); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}
	return nil
}

func echo(w io.Writer, line string) error {
	if w == nil {
		return nil
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("echo whisper output: %w", err)
	}
	return nil
}
