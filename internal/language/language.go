package language

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const Auto = "auto"

var ErrUnsupportedLanguage = errors.New("unsupported language")

var supported = map[string]string{
	"en": "English",
	"he": "Hebrew",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"it": "Italian",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"ar": "Arabic",
	"pt": "Portuguese",
}

// Supported returns the accepted two-letter codes in sorted order.
func Supported() []string {
	codes := make([]string, 0, len(supported))
	for code := range supported {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func DisplayName(code string) string {
	if code == Auto {
		return "auto-detect"
	}
	return supported[code]
}

// Normalize maps user input such as "EN", "en-US" or "iw" to the two-letter
// code passed to whisper. Empty input means auto-detection.
func Normalize(input string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" || trimmed == Auto {
		return Auto, nil
	}

	tag, err := xlanguage.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedLanguage, input, strings.Join(Supported(), ", "))
	}

	base, _ := tag.Base()
	code := base.String()
	if _, ok := supported[code]; !ok {
		return "", fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedLanguage, input, strings.Join(Supported(), ", "))
	}
	return code, nil
}

// NativeName is the language's name written in that language, e.g. "עברית" for he.
func NativeName(code string) string {
	if _, ok := supported[code]; !ok {
		return ""
	}
	return display.Self.Name(xlanguage.Make(code))
}
