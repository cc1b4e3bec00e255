package logger

import (
	"context"
	"fmt"
	"time"

	common_models "campus-events/internal/common/models"
	"campus-events/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	Tenant    string
	RequestID string
	Caller    string // Function name
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	collection *mongo.Collection
	logChan    chan LogEntry
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB) *DBLogWriter {
	writer := &DBLogWriter{
		collection: mongodb.DB.Collection("logs"),
		logChan:    make(chan LogEntry, 1000), // Buffer 1000 logs
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap core; it never blocks the request path
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		logRecord := common_models.Log{
			Message:      entry.Message,
			Tenant:       entry.Tenant,
			RequestID:    entry.RequestID,
			Caller:       entry.Caller,
			LogLevelId:   mapLevelToInt(entry.Level),
			CreatedOnUtc: time.Now().UTC(),
		}

		// Errors are ignored so logging never takes the app down
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = w.collection.InsertOne(ctx, logRecord)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
