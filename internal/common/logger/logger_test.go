package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZapWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settlement.log")

	log, err := NewZap("giveaway-settlement", false, FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	require.NoError(t, err)

	log.Info("payout batch submitted")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "payout batch submitted")
	assert.Contains(t, string(data), `"service":"giveaway-settlement"`)
}

func TestNewZapWithoutFile(t *testing.T) {
	log, err := NewZap("giveaway-settlement", true, FileOptions{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}
