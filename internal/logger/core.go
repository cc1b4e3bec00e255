package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore is a Zap Core that mirrors every entry to the platform log collection
type DBCore struct {
	zapcore.Core
	writer *DBLogWriter
	fields []zapcore.Field
}

// NewDBCore wraps an existing core (like console logger) and adds DB logging
func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps fields attached via logger.With so tenant and request ids survive
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
		fields: append(append([]zapcore.Field{}, c.fields...), fields...),
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	var tenant, requestID string
	for _, group := range [][]zapcore.Field{c.fields, fields} {
		for _, f := range group {
			switch f.Key {
			case "tenant":
				tenant = f.String
			case "request_id":
				requestID = f.String
			}
		}
	}

	c.writer.AddLog(LogEntry{
		Level:     entry.Level,
		Message:   entry.Message,
		Tenant:    tenant,
		RequestID: requestID,
		Caller:    entry.Caller.Function, // zap must be built with AddCaller
	})

	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
