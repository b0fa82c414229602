package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/voxsub/internal/config"
	"github.com/fmueller/voxsub/internal/convert"
	"github.com/fmueller/voxsub/internal/language"
	"github.com/fmueller/voxsub/internal/logging"
	"github.com/fmueller/voxsub/internal/media"
	"github.com/fmueller/voxsub/internal/platform"
	"github.com/fmueller/voxsub/internal/srt"
	"github.com/fmueller/voxsub/internal/transcript"
	"github.com/fmueller/voxsub/internal/version"
	"github.com/fmueller/voxsub/internal/whisper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	configPath       string
	verbose          bool
	jsonLogs         bool
	logLevel         string
	noProgress       bool
	model            string
	modelDir         string
	language         string
	autoDownload     bool
	whisperPath      string
	ffmpegPath       string
	mode             string
	strictTimestamps bool
	echo             bool
	silenceGate      bool
	silenceDBFS      float64
	output           string

	logger *zap.Logger
	out    io.Writer
	in     io.Reader

	isTerminal   func() bool
	promptFn     func(ctx context.Context, needLanguage bool) (mediaPath string, lang string, err error)
	convertFn    func(ctx context.Context, req convert.Request) (convert.Result, error)
	extractFn    func(ctx context.Context, input, output string) error
	transcribeFn func(ctx context.Context, audioPath string, handle whisper.LineHandler) error
}

func newAppState() *appState {
	defaults := config.Default()
	app := &appState{
		model:       defaults.Whisper.Model,
		mode:        defaults.Subtitles.Mode,
		silenceDBFS: defaults.Audio.SilenceThresholdDBFS,
		logLevel:    defaults.Logging.Level,
		out:         os.Stdout,
		in:          os.Stdin,
	}
	app.promptFn = app.promptForInput
	app.convertFn = app.convertMedia
	app.extractFn = app.extractAudio
	app.transcribeFn = app.transcribeLines
	return app
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newAppState())
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voxsub [media-file]",
		Short: "Generate SRT subtitles from a video or audio file with whisper.cpp",
		Long: "voxsub extracts the audio track of a media file with ffmpeg, transcribes it with whisper.cpp\n" +
			"and writes the result as a SubRip (.srt) file next to the input.\n\n" +
			"Run without arguments in a terminal to be prompted for the file and language.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.initialize(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var mediaPath string
			if len(args) == 1 {
				mediaPath = args[0]
			}
			return app.runDefault(cmd.Context(), mediaPath)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindGlobalFlags(cmd, app)
	bindConvertFlags(cmd, app)
	cmd.Flags().StringVarP(&app.output, "output", "o", "", "Subtitle file to write (default: media file with .srt extension)")

	cmd.AddCommand(newSRTCmd(app))
	cmd.AddCommand(newExtractCmd(app))
	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newLanguagesCmd())
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindGlobalFlags(cmd *cobra.Command, app *appState) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "Config file (default: platform config dir)/voxsub/config.toml")
	flags.BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	flags.BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	flags.BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
	flags.StringVar(&app.model, "model", app.model, "Model name or model file path")
	flags.StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	flags.StringVar(&app.language, "language", app.language, "Spoken language ("+strings.Join(language.Supported(), "|")+"|auto)")
	flags.BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
	flags.StringVar(&app.whisperPath, "whisper-path", app.whisperPath, "whisper.cpp executable (whisper-cli or main)")
	flags.StringVar(&app.ffmpegPath, "ffmpeg-path", app.ffmpegPath, "ffmpeg executable")
}

func bindConvertFlags(cmd *cobra.Command, app *appState) {
	bindSubtitleFlags(cmd, app)
	cmd.Flags().BoolVar(&app.echo, "echo", app.echo, "Print whisper output while converting")
	cmd.Flags().BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Detect silent audio and write an empty subtitle file without transcribing")
	cmd.Flags().Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
}

func bindSubtitleFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.mode, "mode", app.mode, "Subtitle writing mode: stream|batch")
	cmd.Flags().BoolVar(&app.strictTimestamps, "strict-timestamps", app.strictTimestamps, "Only accept [HH:MM:SS.mmm --> HH:MM:SS.mmm] timestamps")
}

// initialize loads the config file and fills every flag the user did not
// set explicitly from it, then builds the logger.
func (a *appState) initialize(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.in = cmd.InOrStdin()

	cfg, path, exists, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.applyConfig(cmd, cfg)

	logger, err := logging.New(logging.Options{Verbose: a.verbose, JSON: a.jsonLogs, Level: a.logLevel})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.logger = logger
	if exists {
		a.log().Debug("loaded config", zap.String("path", path))
	}

	if a.language != "" {
		normalized, err := language.Normalize(a.language)
		if err != nil {
			return err
		}
		a.language = normalized
	}
	return nil
}

func (a *appState) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	unset := func(name string) bool {
		return flags.Lookup(name) == nil || !flags.Changed(name)
	}

	if unset("model") {
		a.model = cfg.Whisper.Model
	}
	if unset("model-dir") {
		a.modelDir = cfg.Whisper.ModelDir
	}
	if unset("language") {
		a.language = cfg.Whisper.Language
	}
	if unset("auto-download") {
		a.autoDownload = cfg.Whisper.AutoDownload
	}
	if unset("whisper-path") {
		a.whisperPath = cfg.Whisper.Path
	}
	if unset("ffmpeg-path") {
		a.ffmpegPath = cfg.FFmpeg.Path
	}
	if unset("mode") {
		a.mode = cfg.Subtitles.Mode
	}
	if unset("strict-timestamps") {
		a.strictTimestamps = cfg.Subtitles.StrictTimestamps
	}
	if unset("echo") {
		a.echo = cfg.Subtitles.Echo
	}
	if unset("silence-gate") {
		a.silenceGate = cfg.Audio.SilenceGate
	}
	if unset("silence-threshold-dbfs") {
		a.silenceDBFS = cfg.Audio.SilenceThresholdDBFS
	}
	if unset("json") {
		a.jsonLogs = cfg.Logging.Format == config.FormatJSON
	}
	a.logLevel = cfg.Logging.Level
}

func (a *appState) runDefault(ctx context.Context, mediaPath string) error {
	lang := a.language

	if strings.TrimSpace(mediaPath) == "" {
		if !a.terminal() {
			return fmt.Errorf("%w; pass a media file: voxsub <media-file>", ErrInteractiveRequiresTTY)
		}
		prompted, promptedLang, err := a.promptFn(ctx, lang == "")
		if err != nil {
			return err
		}
		mediaPath = prompted
		if lang == "" {
			lang = promptedLang
		}
	}
	if lang == "" {
		lang = language.Auto
	}

	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("media file not found: %w", err)
	}

	mode, err := srt.ParseMode(a.mode)
	if err != nil {
		return err
	}

	output := a.output
	if strings.TrimSpace(output) == "" {
		output = media.SubtitlePath(mediaPath)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	req := convert.Request{
		MediaPath:            mediaPath,
		OutputPath:           output,
		Language:             lang,
		Mode:                 mode,
		Parser:               a.parser(),
		SilenceGate:          a.silenceGate,
		SilenceThresholdDBFS: a.silenceDBFS,
	}
	if a.echo {
		req.Echo = a.outWriter()
	}

	result, err := a.convertFn(ctx, req)
	if err != nil {
		return err
	}

	if result.Silent {
		a.log().Warn("no speech detected; wrote an empty subtitle file", zap.String("output", result.OutputPath))
	} else if result.Cues == 0 {
		a.log().Warn("whisper produced no timestamped lines; subtitle file is empty", zap.String("output", result.OutputPath))
	}

	fmt.Fprintf(a.outWriter(), "Done!\nSubtitles file @ '%s'\n", result.OutputPath)
	return nil
}

// convertMedia is the production conversion: resolve tools and model, then
// run the pipeline.
func (a *appState) convertMedia(ctx context.Context, req convert.Request) (convert.Result, error) {
	extractor, err := media.NewExtractor(a.ffmpegPath, a.log())
	if err != nil {
		return convert.Result{}, err
	}
	engine, err := whisper.NewBundledEngine(a.whisperPath, a.log())
	if err != nil {
		return convert.Result{}, err
	}
	model, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return convert.Result{}, err
	}
	req.ModelPath = model.Path

	a.log().Info("converting",
		zap.String("media", req.MediaPath),
		zap.String("model", model.Path),
		zap.String("language", req.Language),
		zap.String("mode", string(req.Mode)),
	)

	progress := startCueCounter(a.progressEnabled() && req.Echo == nil, "Transcribing")
	defer progress.Stop()
	req.OnCue = progress.Set

	converter := &convert.Converter{Extractor: extractor, Engine: engine, Logger: a.log()}
	return converter.Run(ctx, req)
}

func (a *appState) parser() transcript.Parser {
	if a.strictTimestamps {
		return transcript.NewParser(transcript.Strict)
	}
	return transcript.NewParser(transcript.Lenient)
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) terminal() bool {
	if a.isTerminal != nil {
		return a.isTerminal()
	}
	f, ok := a.inReader().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a *appState) inReader() io.Reader {
	if a.in == nil {
		return os.Stdin
	}
	return a.in
}
