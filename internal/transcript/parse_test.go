package transcript

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLineMatchesWhisperOutput(t *testing.T) {
	t.Parallel()

	u, ok := ParseLine("[00:00:14.840 --> 00:00:17.180]   hello world")
	require.True(t, ok)
	require.Equal(t, Timestamp("00:00:14.840"), u.Start)
	require.Equal(t, Timestamp("00:00:17.180"), u.End)
	require.Equal(t, "hello world", u.Text)
}

func TestParseLineKeepsNonLatinText(t *testing.T) {
	t.Parallel()

	u, ok := ParseLine("[00:00:14.840 --> 00:00:17.180]   אח, איזו חיפושית זבל")
	require.True(t, ok)
	require.Equal(t, "אח, איזו חיפושית זבל", u.Text)
}

func TestParseLineConsumesWhitespaceRunBeforeText(t *testing.T) {
	t.Parallel()

	u, ok := ParseLine("[00:00:00.000 --> 00:00:01.000]     padded")
	require.True(t, ok)
	require.Equal(t, "padded", u.Text)

	u, ok = ParseLine("[00:00:00.000 --> 00:00:01.000] \ttabbed  text  ")
	require.True(t, ok)
	require.Equal(t, "tabbed  text  ", u.Text)
}

func TestParseLineRejectsNoise(t *testing.T) {
	t.Parallel()

	noise := []string{
		"",
		"progress: 50%",
		"whisper_init_from_file_with_params_no_state: loading model from 'ggml-large-v3.bin'",
		"[00:00:01.000 --> 00:00:02.000]",
		"[00:00:01.000 --> 00:00:02.000]text-without-space",
		"[00:00:01,000 --> 00:00:02,000]  comma separators",
		"[00:01.000 --> 00:02.000]  missing hour field",
		"  [00:00:01.000 --> 00:00:02.000]  leading space",
		"[aa:bb:cc.ddd --> 00:00:02.000]  letters",
	}

	for _, line := range noise {
		_, ok := ParseLine(line)
		require.Falsef(t, ok, "line %q should not match", line)
	}
}

func TestParseLineAcceptsUnconstrainedDigitCounts(t *testing.T) {
	t.Parallel()

	u, ok := ParseLine("[100:0:5.25 --> 100:0:7.5]  long recording")
	require.True(t, ok)
	require.Equal(t, Timestamp("100:0:5.25"), u.Start)
	require.Equal(t, Timestamp("100:0:7.5"), u.End)
}

func TestStrictParserRequiresCanonicalWidths(t *testing.T) {
	t.Parallel()

	strict := NewParser(Strict)
	require.Equal(t, Strict, strict.Convention())
	require.Equal(t, "strict", strict.Convention().String())
	require.Equal(t, "lenient", NewParser(Lenient).Convention().String())

	u, ok := strict.Parse("[00:00:01.000 --> 00:00:02.500]  one")
	require.True(t, ok)
	require.Equal(t, "one", u.Text)

	_, ok = strict.Parse("[0:0:1.0 --> 0:0:2.5]  one")
	require.False(t, ok)

	_, ok = NewParser(Lenient).Parse("[0:0:1.0 --> 0:0:2.5]  one")
	require.True(t, ok)
}

func TestZeroParserIsLenient(t *testing.T) {
	t.Parallel()

	var p Parser
	_, ok := p.Parse("[0:0:1.0 --> 0:0:2.5]  one")
	require.True(t, ok)
}

func TestParserAcceptsOutOfOrderTimestamps(t *testing.T) {
	t.Parallel()

	u, ok := ParseLine("[00:00:09.000 --> 00:00:01.000]  backwards")
	require.True(t, ok)
	require.Equal(t, Timestamp("00:00:09.000"), u.Start)
	require.Equal(t, Timestamp("00:00:01.000"), u.End)
}

func TestTimestampSRTOnlySwapsSeparator(t *testing.T) {
	t.Parallel()

	require.Equal(t, "00:00:14,840", Timestamp("00:00:14.840").SRT())
	require.Equal(t, "7:5:3,12", Timestamp("7:5:3.12").SRT())
	require.Equal(t, "00:00:14.840", Timestamp("00:00:14.840").String())
}

func TestEachLineStopsOnHandlerError(t *testing.T) {
	t.Parallel()

	var seen []string
	stop := errors.New("stop")
	err := EachLine(strings.NewReader("a\nb\nc\n"), func(line string) error {
		seen = append(seen, line)
		if line == "b" {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, []string{"a", "b"}, seen)
}

func TestEachLineHandlesCRLFAndMissingTrailingNewline(t *testing.T) {
	t.Parallel()

	var seen []string
	err := EachLine(strings.NewReader("a\r\nb"), func(line string) error {
		seen = append(seen, line)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, seen)
}
