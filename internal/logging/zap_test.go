package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestResolveLevel(t *testing.T) {
	t.Parallel()

	level, err := ResolveLevel(Options{})
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, level)

	level, err = ResolveLevel(Options{Level: "WARN"})
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, level)

	level, err = ResolveLevel(Options{Level: "error", Verbose: true})
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, level)

	_, err = ResolveLevel(Options{Level: "loud"})
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestNewBuildsConsoleAndJSONLoggers(t *testing.T) {
	t.Parallel()

	for _, opts := range []Options{{}, {JSON: true, Level: "debug"}} {
		logger, err := New(opts)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}

	_, err := New(Options{Level: "nope"})
	require.Error(t, err)
}
