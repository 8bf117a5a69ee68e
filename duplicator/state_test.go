package duplicator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateStringer(t *testing.T) {
	require.Equal(t, "uninitialized", StateUninitialized.String())
	require.Equal(t, "ready", StateReady.String())
	require.Equal(t, "stale", StateStale.String())
	require.Equal(t, "unknown", State(99).String())
}
