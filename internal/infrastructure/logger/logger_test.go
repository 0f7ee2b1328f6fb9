package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/balance-core/internal/infrastructure/config"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  logrus.Level
	}{
		{name: "debug", level: "debug", want: logrus.DebugLevel},
		{name: "warn uppercase", level: "WARN", want: logrus.WarnLevel},
		{name: "empty falls back", level: "", want: logrus.InfoLevel},
		{name: "unknown falls back", level: "loud", want: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(config.LogConfig{Level: tt.level})
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(config.LogConfig{Level: "info", Format: "json"}, &buf)

	log.WithField("filename", "footman.json").Info("saved entity")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "saved entity", line["msg"])
	assert.Equal(t, "footman.json", line["filename"])
	assert.Equal(t, "info", line["level"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(config.LogConfig{Level: "info", Format: "text"}, &buf)

	log.Debug("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}
