package tabsniff

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger from the level and format in cfg.
// An invalid level falls back to warn.
func NewLogger(cfg Config, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}
	return logger
}

// parserEntry tags every log line of one parser with a fresh id and its source
func parserEntry(logger *logrus.Logger, source string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"parser_id": uuid.NewString(),
		"source":    source,
	})
}
