// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "", want: LevelInfo},
		{in: "debug", want: LevelDebug},
		{in: "Warning", want: LevelWarn},
		{in: "ERROR", want: LevelError},
		{in: "trace", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	c, err := NewConfig(WithLevel("warn"))
	require.NoError(t, err)
	assert.NoError(t, c.Validate())

	c.MaxBackups = -1
	assert.Error(t, c.Validate())

	_, err = NewConfig(WithLevel("loud"))
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "mirror.log")
	c, err := NewConfig(WithLevel("info"), WithFile(logFile))
	require.NoError(t, err)
	c.DisableConsoleOutput = true

	log, err := New(c)
	require.NoError(t, err)
	log.WithField("run_id", "abc").Infof("fetched %d files", 3)
	log.Debug("not written")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fetched 3 files")
	assert.Contains(t, string(data), `"run_id":"abc"`)
	assert.False(t, strings.Contains(string(data), "not written"))
}

func TestNewLoggerWithoutOutputs(t *testing.T) {
	log, err := New(&Config{DisableConsoleOutput: true})
	require.NoError(t, err)
	log.WithError(assert.AnError).Error("dropped")
}

func TestForZapCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := ForZap(zap.New(core, zap.AddCaller()))

	log.WithField("kind", "value5").WithError(assert.AnError).Debugf("%d urls tried", 12)
	log.Warn("plain")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "12 urls tried", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "value5", fields["kind"])
	assert.Equal(t, assert.AnError.Error(), fields["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Contains(t, entries[1].Caller.File, "logging_test.go")

	Discard().WithField("k", 1).Infof("dropped %s", "x")
}
