// Package logger provides structured logging for the simulation server.
// Every board mutation ordered from outside should be traceable through it.
package logger

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled logging with context.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a logger writing to stdout/stderr. When the LOGFILE
// environment variable is set, output is mirrored to a rotating file under
// ./logs instead (10 MB per file, two weeks retention).
func NewLogger() *Logger {
	var infoSink io.Writer = os.Stdout
	var errSink io.Writer = os.Stderr

	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		rotating := &lumberjack.Logger{
			Filename: "./logs/" + logFile,
			MaxSize:  10, // megabytes
			MaxAge:   14, // days
		}
		infoSink = rotating
		errSink = rotating
	}

	return &Logger{
		infoLogger:  log.New(infoSink, "[CORDON-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(infoSink, "[CORDON-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(errSink, "[CORDON-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(msg)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(msg)
}

// Event logs a specific game event for moderator oversight.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.infoLogger.Printf("[EVENT:%s] Actor:%s | %s", eventType, actorID, details)
}
