package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fmueller/voxsub/internal/language"
	"github.com/fmueller/voxsub/internal/platform"
	"github.com/fmueller/voxsub/internal/transcript"
	"go.uber.org/zap"
)

type BundledEngine struct {
	Executable string
	Logger     *zap.Logger
}

// NewBundledEngine picks the whisper executable: explicit path, then
// VOXSUB_WHISPER_PATH, then a copy shipped next to voxsub, then PATH, then
// the classic ~/whisper.cpp/main build.
func NewBundledEngine(explicit string, logger *zap.Logger) (*BundledEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, source := range []struct {
		name  string
		value string
	}{
		{name: "whisper path", value: explicit},
		{name: "VOXSUB_WHISPER_PATH", value: os.Getenv("VOXSUB_WHISPER_PATH")},
	} {
		path := strings.TrimSpace(source.value)
		if path == "" {
			continue
		}
		expanded, err := platform.ExpandHome(path)
		if err != nil {
			return nil, err
		}
		if err := ensureExecutable(expanded); err != nil {
			return nil, fmt.Errorf("%s is not executable: %w", source.name, err)
		}
		return &BundledEngine{Executable: expanded, Logger: logger}, nil
	}

	voxsubExe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve voxsub executable path: %w", err)
	}

	whisperExe, err := ResolveEnginePath(voxsubExe)
	if err != nil {
		return nil, err
	}

	return &BundledEngine{Executable: whisperExe, Logger: logger}, nil
}

func ResolveEnginePath(voxsubExecutable string) (string, error) {
	candidates := EnginePathCandidates(voxsubExecutable)
	for _, candidate := range candidates {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	if found, err := exec.LookPath(engineBinaryName()); err == nil {
		return found, nil
	}

	if legacy, err := platform.ExpandHome(filepath.Join("~", "whisper.cpp", "main")); err == nil {
		if err := ensureExecutable(legacy); err == nil {
			return legacy, nil
		}
	}

	return "", fmt.Errorf("whisper engine not found near %s or on PATH; install whisper.cpp and put %s on PATH, or set VOXSUB_WHISPER_PATH", voxsubExecutable, engineBinaryName())
}

func EnginePathCandidates(voxsubExecutable string) []string {
	binDir := filepath.Dir(voxsubExecutable)
	engineName := engineBinaryName()
	hostTarget := fmt.Sprintf("%s_%s", runtime.GOOS, platform.NormalizeArch(runtime.GOARCH))

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", hostTarget, engineName),
		filepath.Join(binDir, engineName),
	}
}

// Args builds the whisper command line. whisper-cli falls back to English
// without -l, so an empty language is sent as auto.
func Args(req TranscriptionRequest) []string {
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = language.Auto
	}
	return []string{"-l", lang, "-m", req.ModelPath, "-f", req.AudioPath}
}

func (b *BundledEngine) Transcribe(ctx context.Context, req TranscriptionRequest, handle LineHandler) error {
	if strings.TrimSpace(req.AudioPath) == "" {
		return errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return errors.New("model path is required")
	}
	if handle == nil {
		handle = func(string) error { return nil }
	}

	if err := ensureExecutable(b.Executable); err != nil {
		return fmt.Errorf("whisper engine missing or not executable: %w", err)
	}

	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	args := Args(req)
	cmd := exec.CommandContext(runCtx, b.Executable, args...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open whisper output: %w", err)
	}

	logger.Debug("running whisper engine", zap.String("engine", b.Executable), zap.Strings("args", args))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start whisper engine: %w", err)
	}

	var handlerErr error
	readErr := transcript.EachLine(stdout, func(line string) error {
		if err := handle(line); err != nil {
			handlerErr = err
			return err
		}
		return nil
	})
	if readErr != nil {
		cancel()
	}

	waitErr := cmd.Wait()
	if handlerErr != nil {
		return handlerErr
	}
	if readErr != nil {
		return readErr
	}
	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return b.describeFailure(waitErr, stderr.String())
	}

	return nil
}

func (b *BundledEngine) describeFailure(err error, stderr string) error {
	errText := strings.TrimSpace(stderr)
	if isMissingSharedLibraryError(errText) {
		return fmt.Errorf("whisper engine at %s is missing required shared libraries (%s); rebuild whisper-cli with BUILD_SHARED_LIBS=OFF or install the libraries", b.Executable, errText)
	}
	if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
		return fmt.Errorf("whisper engine crashed with an illegal CPU instruction; " +
			"your CPU may lack required instruction set extensions; " +
			"set VOXSUB_WHISPER_PATH to a whisper-cli binary built for your CPU")
	}
	return fmt.Errorf("whisper transcribe failed: %w (%s)", err, tail(errText, 5))
}

func tail(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	for _, pattern := range []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	} {
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
