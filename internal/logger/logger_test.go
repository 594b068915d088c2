package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"json stdout", Config{Level: "debug", Format: "json", Output: "stdout"}, false},
		{"text stderr", Config{Level: "info", Format: "text", Output: "stderr"}, false},
		{"file output", Config{Level: "warn", Format: "json", Output: filepath.Join(t.TempDir(), "logs", "janitor.log")}, false},
		{"empty output defaults to stdout", Config{Level: "error", Format: "text"}, false},
		{"invalid level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "debug", Format: "xml", Output: "stdout"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLogger_ErrorCarriesErrorField(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewWithWriter(buf, "json", slog.LevelDebug)
	require.NoError(t, err)

	log.Error("bulk delete failed", errors.New("discord said no"), Field{Key: "channel_id", Value: "42"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bulk delete failed", entry["msg"])
	assert.Equal(t, "discord said no", entry["error"])
	assert.Equal(t, "42", entry["channel_id"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			level, ok := ParseLevel(tt.level)
			require.True(t, ok)
			log, err := NewWithWriter(buf, "text", level)
			require.NoError(t, err)

			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")
			log.Error("error message", nil)

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info message"))
			assert.Equal(t, tt.wantWarn, strings.Contains(out, "warn message"))
			assert.Contains(t, out, "error message")
		})
	}
}

func TestLogger_WithAndCtx(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewWithWriter(buf, "json", slog.LevelDebug)
	require.NoError(t, err)

	child := log.With(Field{Key: "component", Value: "scheduler"})
	child.InfoCtx(context.Background(), "tick")
	child.Log(context.Background(), slog.LevelWarn, "bridged", Field{Key: "source", Value: "discordgo"})

	out := buf.String()
	assert.Contains(t, out, `"component":"scheduler"`)
	assert.Contains(t, out, `"msg":"tick"`)
	assert.Contains(t, out, `"source":"discordgo"`)
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Error("ignored", errors.New("boom"))
		log.Info("ignored")
	})
}
