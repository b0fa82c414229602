package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fmueller/voxsub/internal/language"
)

var ErrInteractiveRequiresTTY = errors.New("interactive mode requires a terminal")

func (a *appState) promptForInput(_ context.Context, needLanguage bool) (string, string, error) {
	reader := bufio.NewReader(a.inReader())
	out := a.outWriter()

	mediaPath, err := promptMediaPath(reader, out)
	if err != nil {
		return "", "", err
	}
	if !needLanguage {
		return mediaPath, "", nil
	}

	lang, err := promptLanguage(reader, out)
	if err != nil {
		return "", "", err
	}
	return mediaPath, lang, nil
}

func promptMediaPath(reader *bufio.Reader, out io.Writer) (string, error) {
	answer, err := ask(reader, out, "Drag in a video/audio file!")
	if err != nil {
		return "", err
	}

	path := cleanDroppedPath(answer)
	if path == "" {
		return "", errors.New("no media file given")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("file '%s' does not exist", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("'%s' is a directory, not a media file", path)
	}
	return path, nil
}

func promptLanguage(reader *bufio.Reader, out io.Writer) (string, error) {
	question := "Choose language: " + strings.Join(language.Supported(), " / ") + " (empty for auto-detect)"
	answer, err := ask(reader, out, question)
	if err != nil {
		return "", err
	}
	return language.Normalize(answer)
}

func ask(reader *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprintf(out, "%s\n > ", question)
	answer, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && answer != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input provided")
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// cleanDroppedPath undoes what terminals add when a file is dragged in:
// surrounding whitespace and quotes, and backslash-escaped spaces.
func cleanDroppedPath(input string) string {
	path := strings.TrimSpace(input)
	for len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if (first == '\'' || first == '"') && first == last {
			path = strings.TrimSpace(path[1 : len(path)-1])
			continue
		}
		break
	}
	path = strings.Trim(path, "'")
	if _, err := os.Stat(path); err != nil && strings.Contains(path, `\ `) {
		path = strings.ReplaceAll(path, `\ `, " ")
	}
	return path
}
