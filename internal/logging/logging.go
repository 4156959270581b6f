// Package logging builds the logrus logger shared by the server, the CLI and
// the preprocessing pipeline.
//
// All output goes to the writer given to New, normally stderr: stdout carries
// the MCP protocol and must never see log lines.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log level names accepted by New.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// New returns a text logger writing to w at the named level. An empty level
// means info. An unrecognized level also falls back to info and logs a
// warning naming the bad value.
func New(level string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	lvl, err := ParseLevel(level)
	log.SetLevel(lvl)
	if err != nil {
		log.WithField("log_level", level).Warn("unknown log level, using info")
	}
	return log
}

// ParseLevel maps a level name to a logrus level. It is case-insensitive and
// treats an empty name as info.
func ParseLevel(level string) (logrus.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel, err
	}
	return lvl, nil
}
