package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/warband/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: format}, "gameserver")
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewLogger_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{name: "unknown level", cfg: config.LoggingConfig{Level: "trace", Format: "json"}},
		{name: "unknown format", cfg: config.LoggingConfig{Level: "info", Format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLogger(tt.cfg, "gameserver")
			assert.Error(t, err)
		})
	}
}

func TestNewLogger_LevelFilters(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "console"}, "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestForSessionAndForMap_TagEntries(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	ForSession(base, "s-1").Info("connected")
	ForMap(base, "m-1", "crypt").Info("created")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "s-1", entries[0].ContextMap()["session"])
	assert.Equal(t, "m-1", entries[1].ContextMap()["map"])
	assert.Equal(t, "crypt", entries[1].ContextMap()["type"])
}
