package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	require.Equal(t, 90*time.Second, ParseDuration("90s", time.Hour))
	require.Equal(t, time.Hour, ParseDuration("", time.Hour))
	require.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
	require.Equal(t, time.Hour, ParseDuration("-5m", time.Hour))
}
