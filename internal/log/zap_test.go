// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package log

import (
	"testing"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapFactoryScopes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	var factory logging.LoggerFactory = NewZapFactory(zap.New(core))
	logger := factory.NewLogger("icecontrol")

	logger.Tracef("trace %d", 1)
	logger.Debug("debug")
	logger.Infof("info %s", "x")
	logger.Warn("warn")
	logger.Errorf("error %v", assert.AnError)

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, "trace 1", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "info x", entries[2].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[4].Level)
	for _, entry := range entries {
		assert.Equal(t, "icecontrol", entry.LoggerName)
	}
}

func TestZapWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewZap(zap.New(core)).WithFields("connection", "1#1")

	logger.Info("selected")
	logger.Debug("dropped below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "1#1", entries[0].ContextMap()["connection"])
}

func TestNewDevelopmentFactory(t *testing.T) {
	factory, err := NewDevelopmentFactory("warn")
	require.NoError(t, err)
	assert.NotNil(t, factory.NewLogger("test"))

	_, err = NewDevelopmentFactory("loud")
	assert.Error(t, err)

	NewNopFactory().NewLogger("quiet").Error("dropped")
}
