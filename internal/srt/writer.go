package srt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fmueller/voxsub/internal/transcript"
)

type Mode string

const (
	ModeStream Mode = "stream"
	ModeBatch  Mode = "batch"
)

func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeStream:
		return ModeStream, nil
	case ModeBatch:
		return ModeBatch, nil
	default:
		return "", fmt.Errorf("unknown subtitle mode %q (expected stream or batch)", value)
	}
}

// StreamWriter appends each cue to w as soon as its line arrives.
type StreamWriter struct {
	w      io.Writer
	parser transcript.Parser
	seq    *Sequencer
}

func NewStreamWriter(w io.Writer, parser transcript.Parser) *StreamWriter {
	return &StreamWriter{w: w, parser: parser, seq: NewSequencer()}
}

// WriteLine parses line and, when it is an utterance, writes the cue.
// The returned bool reports whether a cue was written.
func (sw *StreamWriter) WriteLine(line string) (bool, error) {
	u, ok := sw.parser.Parse(line)
	if !ok {
		return false, nil
	}
	if err := sw.WriteUtterance(u); err != nil {
		return false, err
	}
	return true, nil
}

// WriteUtterance writes u as the next cue. A failed write leaves the
// index free for the following utterance.
func (sw *StreamWriter) WriteUtterance(u transcript.Utterance) error {
	cue := sw.seq.Peek(u)
	if _, err := io.WriteString(sw.w, cue.String()); err != nil {
		return fmt.Errorf("write cue %d: %w", cue.Index, err)
	}
	sw.seq.Commit()
	return nil
}

func (sw *StreamWriter) Count() int {
	return sw.seq.Emitted()
}

// Batch collects cues and renders them as one document.
type Batch struct {
	parser transcript.Parser
	seq    *Sequencer
	lines  []string
}

func NewBatch(parser transcript.Parser) *Batch {
	return &Batch{parser: parser, seq: NewSequencer()}
}

func (b *Batch) AddLine(line string) bool {
	u, ok := b.parser.Parse(line)
	if !ok {
		return false
	}
	b.Add(u)
	return true
}

func (b *Batch) Add(u transcript.Utterance) {
	b.lines = append(b.lines, b.seq.Next(u).Lines()...)
}

func (b *Batch) Count() int {
	return b.seq.Emitted()
}

// Document joins the collected cue lines with newlines. Without cues it is empty.
func (b *Batch) Document() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

func (b *Batch) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.Document())
	if err != nil {
		return int64(n), fmt.Errorf("write subtitles: %w", err)
	}
	return int64(n), nil
}

// Convert renders a complete transcript in batch mode. A trailing carriage
// return is dropped from each line, as ConvertReader does for CRLF input.
func Convert(lines []string, parser transcript.Parser) string {
	batch := NewBatch(parser)
	for _, line := range lines {
		batch.AddLine(strings.TrimSuffix(line, "\r"))
	}
	return batch.Document()
}

// ConvertReader reads transcript lines from r and writes SRT to w in the given
// mode. It returns the number of cues written.
func ConvertReader(r io.Reader, w io.Writer, mode Mode, parser transcript.Parser) (int, error) {
	if mode == ModeBatch {
		batch := NewBatch(parser)
		err := transcript.EachLine(r, func(line string) error {
			batch.AddLine(line)
			return nil
		})
		if err != nil {
			return 0, err
		}
		if _, err := batch.WriteTo(w); err != nil {
			return 0, err
		}
		return batch.Count(), nil
	}

	sw := NewStreamWriter(w, parser)
	err := transcript.EachLine(r, func(line string) error {
		_, err := sw.WriteLine(line)
		return err
	})
	return sw.Count(), err
}
