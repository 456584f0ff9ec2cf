package logger

import (
	"strings"
	"testing"

	"github.com/oplog/oplog/config"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogsFiltersByLevel(t *testing.T) {
	Debug("debug-marker")
	Warning("warning-marker")
	Error("error-marker")

	logs := GetLogs(100, "WARNING")
	joined := strings.Join(logs, "\n")
	assert.Contains(t, joined, "warning-marker")
	assert.Contains(t, joined, "error-marker")
	assert.NotContains(t, joined, "debug-marker")
}

func TestGetLogsLimitsCount(t *testing.T) {
	for i := 0; i < 5; i++ {
		Errorf("limit-%d", i)
	}
	logs := GetLogs(2, "ERROR")
	require.Len(t, logs, 2)
	assert.Contains(t, logs[0], "limit-4")
	assert.Contains(t, logs[1], "limit-3")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel(config.Warn)
	require.NoError(t, err)
	assert.Equal(t, logging.WARNING, lvl)

	_, err = ParseLevel(config.LogLevel("loud"))
	assert.Error(t, err)
}
