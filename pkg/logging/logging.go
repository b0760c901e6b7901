// Package logging configures the process logger.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a logger at level writing text or JSON records to w.
func New(level, format string, w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)
	if err := Configure(log, level, format); err != nil {
		return nil, err
	}
	return log, nil
}

// Configure applies level and format to an existing logger. It is used when
// the configuration is reloaded; on error the logger is left unchanged.
func Configure(log *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	var formatter logrus.Formatter
	switch format {
	case "", "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.SetLevel(lvl)
	log.SetFormatter(formatter)
	return nil
}
