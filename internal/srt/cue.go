package srt

import (
	"strconv"
	"strings"

	"github.com/fmueller/voxsub/internal/transcript"
)

type Cue struct {
	Index int
	Start transcript.Timestamp
	End   transcript.Timestamp
	Text  string
}

// Lines returns the cue block line by line, ending with the blank separator
// line. Both the streaming and the batch writers render from this.
func (c Cue) Lines() []string {
	return []string{
		strconv.Itoa(c.Index),
		c.Start.SRT() + " --> " + c.End.SRT(),
		c.Text,
		"",
	}
}

func (c Cue) String() string {
	return strings.Join(c.Lines(), "\n") + "\n"
}

// Sequencer numbers cues from 1. It is not safe for concurrent use.
type Sequencer struct {
	next int
}

func NewSequencer() *Sequencer {
	return &Sequencer{next: 1}
}

// Peek renders u with the index the next emitted cue gets, without
// advancing the counter.
func (s *Sequencer) Peek(u transcript.Utterance) Cue {
	if s.next < 1 {
		s.next = 1
	}
	return Cue{
		Index: s.next,
		Start: u.Start,
		End:   u.End,
		Text:  u.Text,
	}
}

// Commit advances the counter past the cue returned by Peek.
func (s *Sequencer) Commit() {
	if s.next < 1 {
		s.next = 1
	}
	s.next++
}

// Next turns u into the next cue and advances the counter.
func (s *Sequencer) Next(u transcript.Utterance) Cue {
	cue := s.Peek(u)
	s.Commit()
	return cue
}

// Emitted is the number of cues handed out so far.
func (s *Sequencer) Emitted() int {
	if s.next < 1 {
		return 0
	}
	return s.next - 1
}
