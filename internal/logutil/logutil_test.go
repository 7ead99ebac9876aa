package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogConfig_Level(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want zapcore.Level
	}{
		{"default", "", zapcore.WarnLevel},
		{"debug", "debug", zapcore.DebugLevel},
		{"upper", "ERROR", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, err := LogConfig{Level: tt.in}.level()
			require.NoError(t, err)
			assert.Equal(t, tt.want, lvl.Level())
		})
	}

	_, err := LogConfig{Level: "chatty"}.level()
	assert.Error(t, err)
}

func TestLogConfig_UnsupportedFormat(t *testing.T) {
	_, err := New(LogConfig{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported log format: xml")
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinvite.log")
	logger, err := New(LogConfig{Level: "info", Format: "json", Filename: path, MaxSize: 1})
	require.NoError(t, err)

	logger.Info("fetch issued", zap.Int("seq", 3))
	logger.Debug("dropped by level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"fetch issued"`)
	assert.Contains(t, out, `"seq":3`)
	assert.False(t, strings.Contains(out, "dropped by level"))
}

func TestL_DefaultsToNop(t *testing.T) {
	require.NotNil(t, L())
	L().Info("goes nowhere")
}
