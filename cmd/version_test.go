package cmd

import (
	"strconv"
	"testing"

	"github.com/signalvane/signalvane/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInfo(t *testing.T) {
	lines := buildInfo()
	require.Len(t, lines, 4)
	assert.Equal(t, "signalvane CLI", lines[0])
	assert.Contains(t, lines[1], version)
	assert.Contains(t, lines[3], strconv.Itoa(history.MaxSnapshots))
}
