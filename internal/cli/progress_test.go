package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartSpinnerEnabled(t *testing.T) {
	t.Parallel()
	stop := startSpinner(true, "testing")
	require.NotNil(t, stop)
	stop()
	stop()
}

func TestStartSpinnerDisabled(t *testing.T) {
	t.Parallel()
	stop := startSpinner(false, "testing")
	require.NotNil(t, stop)
	stop()
}

func TestCueCounterEnabled(t *testing.T) {
	t.Parallel()
	counter := startCueCounter(true, "testing")
	counter.Set(1)
	counter.Set(2)
	counter.Stop()
	counter.Stop()
}

func TestCueCounterDisabledIsNoop(t *testing.T) {
	t.Parallel()
	counter := startCueCounter(false, "testing")
	require.Nil(t, counter.bar)
	counter.Set(3)
	counter.Stop()

	var missing *cueCounter
	missing.Set(1)
	missing.Stop()
}
