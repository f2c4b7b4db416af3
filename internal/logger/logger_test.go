package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		input string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"nonsense", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input, "text").(*logger)
			if l.level != tt.want {
				t.Errorf("New(%q) level = %v, want %v", tt.input, l.level, tt.want)
			}
		})
	}
}

func TestFieldsFromArgs(t *testing.T) {
	fields := fieldsFromArgs("register", "0xc0011020", "core", 3)
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields["register"] != "0xc0011020" {
		t.Errorf("register = %v", fields["register"])
	}
	if fields["core"] != 3 {
		t.Errorf("core = %v", fields["core"])
	}
}

func TestFieldsFromArgs_Empty(t *testing.T) {
	if fields := fieldsFromArgs(); fields != nil {
		t.Error("no args should produce nil fields")
	}
}

func TestFieldsFromArgs_OddTrailing(t *testing.T) {
	fields := fieldsFromArgs("mod", "intel", "dangling")
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields["mod"] != "intel" {
		t.Errorf("mod = %v", fields["mod"])
	}
}

func TestCleanFormatter_WhitelistedFields(t *testing.T) {
	f := &CleanFormatter{}
	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "Register preset applied",
		Data: logrus.Fields{
			"mod":      "ryzen_19h",
			"cores":    16,
			"internal": "hidden",
		},
	}
	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "Register preset applied") {
		t.Error("output should contain the message")
	}
	if !strings.Contains(s, "mod=ryzen_19h") {
		t.Error("whitelisted mod field should be printed")
	}
	if !strings.Contains(s, "cores=16") {
		t.Error("whitelisted cores field should be printed")
	}
	if strings.Contains(s, "hidden") {
		t.Error("non-whitelisted fields should be dropped")
	}
	if !strings.HasSuffix(s, "\n") {
		t.Error("output should end with a newline")
	}
}

func TestNullLogger_Silent(t *testing.T) {
	l := NewNullLogger()
	// Must not panic, allocate output, or care about arguments
	l.Info("msg", "key", "value")
	l.Warn("msg")
	l.Error("msg", "odd")
	l.Debug("msg")
	op := l.StartOperation("noop")
	op.Update("u")
	op.Complete("c")
	op.Fail("f")
	if l.WithField("k", "v") != l {
		t.Error("WithField should return the same null logger")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "1m 30s"},
		{3725 * time.Second, "1h 2m 5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
