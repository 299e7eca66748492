package config

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logger writing to w at the given level, with nanosecond
// timestamps in text or JSON format.
func NewLogger(w io.Writer, level string, json bool) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339Nano, FullTimestamp: true})
	}
	return logger, nil
}
