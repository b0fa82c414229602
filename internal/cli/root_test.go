package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersFlagsAndSubcommands(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	for _, name := range []string{"config", "verbose", "json", "no-progress", "model", "model-dir", "language", "auto-download", "whisper-path", "ffmpeg-path"} {
		require.NotNilf(t, cmd.PersistentFlags().Lookup(name), "persistent flag %s", name)
	}
	for _, name := range []string{"output", "mode", "strict-timestamps", "echo", "silence-gate", "silence-threshold-dbfs"} {
		require.NotNilf(t, cmd.Flags().Lookup(name), "flag %s", name)
	}

	require.Equal(t, "large-v3", cmd.PersistentFlags().Lookup("model").DefValue)
	require.Equal(t, "false", cmd.PersistentFlags().Lookup("auto-download").DefValue)
	require.Equal(t, "stream", cmd.Flags().Lookup("mode").DefValue)
	require.Equal(t, "false", cmd.Flags().Lookup("silence-gate").DefValue)
	require.Equal(t, "-50", cmd.Flags().Lookup("silence-threshold-dbfs").DefValue)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range []string{"srt", "extract", "transcribe", "setup", "models", "languages", "config", "version"} {
		require.Truef(t, names[name], "subcommand %s", name)
	}
}

func TestRootHelpParsesSuccessfully(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCommand(t, []string{"--help"})
	require.NoError(t, err)
	require.Contains(t, stdout, "voxsub [media-file]")
	require.Contains(t, stdout, "srt")
	require.Contains(t, stdout, "extract")
	require.Contains(t, stdout, "setup")
}

func TestSubcommandHelpParsesSuccessfully(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "srt", args: []string{"srt", "--help"}, contains: "Reads whisper.cpp console output"},
		{name: "extract", args: []string{"extract", "--help"}, contains: "Extract a mono 16 kHz WAV"},
		{name: "transcribe", args: []string{"transcribe", "--help"}, contains: "Runs whisper.cpp on an already extracted WAV file"},
		{name: "setup", args: []string{"setup", "--help"}, contains: "Download and verify the whisper model"},
		{name: "models", args: []string{"models", "--help"}, contains: "List known whisper models"},
		{name: "config", args: []string{"config", "--help"}, contains: "Manage the voxsub configuration file"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := runCommand(t, tt.args)
			require.NoError(t, err)
			require.Contains(t, stdout, tt.contains)
		})
	}
}
