package main

import (
	"errors"
	"testing"

	"github.com/fmueller/voxsub/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestShouldPrintUsageHint(t *testing.T) {
	t.Parallel()

	require.True(t, shouldPrintUsageHint(errors.New("unknown command \"bad\" for \"voxsub\"")))
	require.True(t, shouldPrintUsageHint(errors.New("unknown flag: --oops")))
	require.True(t, shouldPrintUsageHint(errors.New("accepts at most 1 arg(s), received 2")))
	require.True(t, shouldPrintUsageHint(errors.New(`invalid argument "loud" for "--silence-threshold-dbfs" flag`)))
	require.False(t, shouldPrintUsageHint(errors.New("ffmpeg returned status 1; did you enter a valid video file? (no output)")))
	require.False(t, shouldPrintUsageHint(nil))
}

func TestHelpHintTarget(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	require.Equal(t, "voxsub", helpHintTarget(root, []string{"--badflag"}))
	require.Equal(t, "voxsub", helpHintTarget(root, []string{"movie.mp4"}))
	require.Equal(t, "voxsub srt", helpHintTarget(root, []string{"srt"}))
	require.Equal(t, "voxsub config init", helpHintTarget(root, []string{"config", "init", "--force"}))
	require.Equal(t, "voxsub", helpHintTarget(nil, nil))
}

func TestRunReturnsExitCodes(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, run([]string{"version"}))
	require.Equal(t, 1, run([]string{"--no-such-flag"}))
}
