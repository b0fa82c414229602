package srt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fmueller/voxsub/internal/transcript"
	"github.com/stretchr/testify/require"
)

var lenient = transcript.NewParser(transcript.Lenient)

func TestStreamWriterRendersFirstCue(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	sw := NewStreamWriter(out, lenient)

	wrote, err := sw.WriteLine("[00:00:14.840 --> 00:00:17.180]   hello world")
	require.NoError(t, err)
	require.True(t, wrote)
	require.Equal(t, "1\n00:00:14,840 --> 00:00:17,180\nhello world\n\n", out.String())
	require.Equal(t, 1, sw.Count())
}

func TestNoiseLinesDoNotConsumeIndices(t *testing.T) {
	t.Parallel()

	lines := []string{
		"progress: 50%",
		"[00:00:01.000 --> 00:00:02.000]  one",
		"",
		"[00:00:02.000 --> 00:00:03.500]  two",
	}

	want := "1\n00:00:01,000 --> 00:00:02,000\none\n\n" +
		"2\n00:00:02,000 --> 00:00:03,500\ntwo\n\n"
	require.Equal(t, want, Convert(lines, lenient))
}

func TestStreamAndBatchProduceIdenticalDocuments(t *testing.T) {
	t.Parallel()

	inputs := [][]string{
		nil,
		{""},
		{"noise", "more noise"},
		{"[00:00:00.000 --> 00:00:01.000]  only"},
		{
			"whisper_model_load: loading model",
			"[00:00:00.000 --> 00:00:02.000]   first",
			"[00:00:02.000 --> 00:00:04.000]   second",
			"",
			"[00:00:04.000 --> 00:00:03.000]   out of order",
			"[1:2:3.4 --> 1:2:3.45]  lenient digits",
			"whisper_print_timings: total time = 1234.56 ms",
		},
	}

	for i, lines := range inputs {
		lines := lines
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			t.Parallel()

			streamed := new(bytes.Buffer)
			sw := NewStreamWriter(streamed, lenient)
			for _, line := range lines {
				_, err := sw.WriteLine(line)
				require.NoError(t, err)
			}

			batch := NewBatch(lenient)
			for _, line := range lines {
				batch.AddLine(line)
			}

			require.Equal(t, batch.Document(), streamed.String())
			require.Equal(t, batch.Count(), sw.Count())
		})
	}
}

func TestIndicesAreGapFreeAndCountMatches(t *testing.T) {
	t.Parallel()

	var lines []string
	matched := 0
	for i := 0; i < 50; i++ {
		if i%3 == 0 {
			lines = append(lines, fmt.Sprintf("noise %d", i))
			continue
		}
		lines = append(lines, fmt.Sprintf("[00:00:%02d.000 --> 00:00:%02d.500]  line %d", i, i, i))
		matched++
	}

	batch := NewBatch(lenient)
	for _, line := range lines {
		batch.AddLine(line)
	}
	require.Equal(t, matched, batch.Count())

	blocks := strings.Split(strings.TrimSuffix(batch.Document(), "\n\n"), "\n\n")
	require.Len(t, blocks, matched)
	for i, block := range blocks {
		require.True(t, strings.HasPrefix(block, fmt.Sprintf("%d\n", i+1)), "block %d: %q", i, block)
	}
}

func TestEmptyInputYieldsEmptyDocument(t *testing.T) {
	t.Parallel()

	require.Empty(t, Convert(nil, lenient))
	require.Empty(t, Convert([]string{"", "nothing here"}, lenient))

	out := new(bytes.Buffer)
	n, err := ConvertReader(strings.NewReader(""), out, ModeStream, lenient)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Zero(t, out.Len())

	n, err = ConvertReader(strings.NewReader("\n\n"), out, ModeBatch, lenient)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Zero(t, out.Len())
}

func TestConvertReaderModesMatch(t *testing.T) {
	t.Parallel()

	input := "banner\n[00:00:00.000 --> 00:00:01.000]  a\n[00:00:01.000 --> 00:00:02.000]  b\n"

	streamed := new(bytes.Buffer)
	n, err := ConvertReader(strings.NewReader(input), streamed, ModeStream, lenient)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	batched := new(bytes.Buffer)
	n, err = ConvertReader(strings.NewReader(input), batched, ModeBatch, lenient)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Equal(t, streamed.String(), batched.String())
}

func TestStrictParserSkipsLenientLines(t *testing.T) {
	t.Parallel()

	lines := []string{
		"[0:0:1.0 --> 0:0:2.0]  short",
		"[00:00:01.000 --> 00:00:02.000]  canonical",
	}

	require.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\ncanonical\n\n", Convert(lines, transcript.NewParser(transcript.Strict)))
}

func TestConvertMatchesConvertReaderOnCRLF(t *testing.T) {
	t.Parallel()

	lines := []string{
		"[00:00:00.000 --> 00:00:01.000]\ttab\r",
		"noise\r",
		"[00:00:01.000 --> 00:00:02.000]  two\r",
	}

	out := new(bytes.Buffer)
	_, err := ConvertReader(strings.NewReader(strings.Join(lines, "\n")), out, ModeBatch, lenient)
	require.NoError(t, err)

	doc := Convert(lines, lenient)
	require.Equal(t, out.String(), doc)
	require.Equal(t, "1\n00:00:00,000 --> 00:00:01,000\ntab\n\n2\n00:00:01,000 --> 00:00:02,000\ntwo\n\n", doc)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestStreamWriterPropagatesSinkErrors(t *testing.T) {
	t.Parallel()

	sw := NewStreamWriter(failingWriter{}, lenient)
	wrote, err := sw.WriteLine("[00:00:00.000 --> 00:00:01.000]  a")
	require.Error(t, err)
	require.False(t, wrote)
	require.Contains(t, err.Error(), "write cue 1")

	wrote, err = sw.WriteLine("noise")
	require.NoError(t, err)
	require.False(t, wrote)
}

type flakyWriter struct {
	failures int
	bytes.Buffer
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.failures > 0 {
		w.failures--
		return 0, errors.New("temporarily unavailable")
	}
	return w.Buffer.Write(p)
}

func TestStreamWriterKeepsIndexAfterFailedWrite(t *testing.T) {
	t.Parallel()

	out := &flakyWriter{failures: 1}
	sw := NewStreamWriter(out, lenient)

	_, err := sw.WriteLine("[00:00:00.000 --> 00:00:01.000]  lost")
	require.Error(t, err)
	require.Zero(t, sw.Count())

	wrote, err := sw.WriteLine("[00:00:01.000 --> 00:00:02.000]  kept")
	require.NoError(t, err)
	require.True(t, wrote)
	require.Equal(t, 1, sw.Count())
	require.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\nkept\n\n", out.String())
}

func TestSequencerPeekDoesNotAdvance(t *testing.T) {
	t.Parallel()

	seq := NewSequencer()
	u := transcript.Utterance{Start: "00:00:00.000", End: "00:00:01.000", Text: "a"}
	require.Equal(t, 1, seq.Peek(u).Index)
	require.Equal(t, 1, seq.Peek(u).Index)
	require.Zero(t, seq.Emitted())

	seq.Commit()
	require.Equal(t, 2, seq.Peek(u).Index)
	require.Equal(t, 1, seq.Emitted())
}

func TestSequencerCountsFromOne(t *testing.T) {
	t.Parallel()

	var seq Sequencer
	require.Zero(t, seq.Emitted())

	first := seq.Next(transcript.Utterance{Start: "00:00:00.000", End: "00:00:01.000", Text: "a"})
	second := seq.Next(transcript.Utterance{Start: "00:00:01.000", End: "00:00:02.000", Text: "b"})
	require.Equal(t, 1, first.Index)
	require.Equal(t, 2, second.Index)
	require.Equal(t, 2, seq.Emitted())

	other := NewSequencer()
	require.Equal(t, 1, other.Next(transcript.Utterance{}).Index)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseMode("")
	require.NoError(t, err)
	require.Equal(t, ModeStream, mode)

	mode, err = ParseMode(" Batch ")
	require.NoError(t, err)
	require.Equal(t, ModeBatch, mode)

	_, err = ParseMode("live")
	require.Error(t, err)
}
