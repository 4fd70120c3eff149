package monitor

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const logFile = "logs/bittrex.log"

// Logger wraps logrus logger
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a logger with the configured level and output target.
// Unknown levels fall back to info; a missing log file falls back to stdout.
func NewLogger(level, output string) *Logger {
	logger := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	logger.SetOutput(outputWriter(logger, output))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &Logger{Logger: logger}
}

func outputWriter(logger *logrus.Logger, output string) io.Writer {
	switch output {
	case "file":
		if file, err := openLogFile(logger); err == nil {
			return file
		}
	case "both":
		if file, err := openLogFile(logger); err == nil {
			return io.MultiWriter(os.Stdout, file)
		}
	}
	return os.Stdout
}

func openLogFile(logger *logrus.Logger) (*os.File, error) {
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		logger.Warnf("Failed to open log file: %v, falling back to console", err)
		return nil, err
	}
	return file, nil
}
