package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDBCoreCapturesTenantAndRequestID(t *testing.T) {
	writer := &DBLogWriter{logChan: make(chan LogEntry, 10)}
	base, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(NewDBCore(base, writer), zap.AddCaller())

	logger.With(zap.String("tenant", "rpi")).Info("approved step", zap.String("request_id", "req-1"))

	require.Len(t, writer.logChan, 1)
	entry := <-writer.logChan
	assert.Equal(t, "approved step", entry.Message)
	assert.Equal(t, "rpi", entry.Tenant)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, 1, observed.Len())
}

func TestDBCoreRespectsLevel(t *testing.T) {
	writer := &DBLogWriter{logChan: make(chan LogEntry, 10)}
	base, _ := observer.New(zapcore.WarnLevel)
	logger := zap.New(NewDBCore(base, writer))

	logger.Info("ignored")
	logger.Warn("kept")

	require.Len(t, writer.logChan, 1)
	assert.Equal(t, "kept", (<-writer.logChan).Message)
}

func TestAddLogDropsWhenFull(t *testing.T) {
	writer := &DBLogWriter{logChan: make(chan LogEntry, 1)}
	writer.AddLog(LogEntry{Message: "first"})
	writer.AddLog(LogEntry{Message: "second"})

	require.Len(t, writer.logChan, 1)
	assert.Equal(t, "first", (<-writer.logChan).Message)
}

func TestMapLevelToInt(t *testing.T) {
	assert.Equal(t, 10, mapLevelToInt(zapcore.DebugLevel))
	assert.Equal(t, 40, mapLevelToInt(zapcore.ErrorLevel))
	assert.Equal(t, 20, mapLevelToInt(zapcore.DPanicLevel))
}
