package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"", logrus.InfoLevel},
		{LevelDebug, logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{LevelInfo, logrus.InfoLevel},
		{LevelWarn, logrus.WarnLevel},
		{" error ", logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(tt.level, &buf)
			if log.GetLevel() != tt.want {
				t.Errorf("level: got %s, want %s", log.GetLevel(), tt.want)
			}
			if buf.Len() != 0 {
				t.Errorf("unexpected output: %q", buf.String())
			}
		})
	}
}

func TestNew_UnknownLevelWarns(t *testing.T) {
	var buf bytes.Buffer
	log := New("chatty", &buf)

	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level: got %s, want info", log.GetLevel())
	}
	out := buf.String()
	if !strings.Contains(out, "unknown log level") || !strings.Contains(out, "log_level=chatty") {
		t.Errorf("expected a warning naming the level, got %q", out)
	}
}

func TestNew_Filtering(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelWarn, &buf)

	log.Info("hidden")
	log.WithField("path", "/tmp/label.jpg").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "path=/tmp/label.jpg") {
		t.Errorf("missing warn line: %q", out)
	}
}
