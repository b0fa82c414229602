package transcript

import (
	"regexp"
	"strings"
)

// Convention selects how strictly timestamp digits are matched.
type Convention int

const (
	// Lenient accepts any number of digits per field, e.g. [0:0:1.5 --> 0:0:2.25].
	Lenient Convention = iota
	// Strict requires HH:MM:SS.mmm.
	Strict
)

func (c Convention) String() string {
	if c == Strict {
		return "strict"
	}
	return "lenient"
}

var (
	lenientPattern = regexp.MustCompile(`^\[(\d+:\d+:\d+\.\d+) --> (\d+:\d+:\d+\.\d+)\]\s+(.*)`)
	strictPattern  = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2}\.\d{3}) --> (\d{2}:\d{2}:\d{2}\.\d{3})\]\s+(.*)`)
)

// Timestamp is a whisper timestamp kept exactly as it appeared in the transcript.
type Timestamp string

// SRT swaps the fractional separator for a comma. Digits are left untouched.
func (t Timestamp) SRT() string {
	return strings.ReplaceAll(string(t), ".", ",")
}

func (t Timestamp) String() string {
	return string(t)
}

type Utterance struct {
	Start Timestamp
	End   Timestamp
	Text  string
}

type Parser struct {
	convention Convention
	pattern    *regexp.Regexp
}

func NewParser(convention Convention) Parser {
	if convention == Strict {
		return Parser{convention: Strict, pattern: strictPattern}
	}
	return Parser{convention: Lenient, pattern: lenientPattern}
}

func (p Parser) Convention() Convention {
	return p.convention
}

// Parse reports whether line is a timed utterance. Lines that do not match
// (banners, progress output, blank lines) return false and are not errors.
func (p Parser) Parse(line string) (Utterance, bool) {
	pattern := p.pattern
	if pattern == nil {
		pattern = lenientPattern
	}

	match := pattern.FindStringSubmatch(line)
	if match == nil {
		return Utterance{}, false
	}

	return Utterance{
		Start: Timestamp(match[1]),
		End:   Timestamp(match[2]),
		Text:  match[3],
	}, true
}

// ParseLine parses with the lenient convention.
func ParseLine(line string) (Utterance, bool) {
	return NewParser(Lenient).Parse(line)
}
