package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core))

	Error("error %d", 1)
	Warn("warn %s", "two")
	Info("info")
	Debug("debug %v", true)

	var tests = []struct {
		level   zapcore.Level
		message string
	}{
		{zapcore.ErrorLevel, "error 1"},
		{zapcore.WarnLevel, "warn two"},
		{zapcore.InfoLevel, "info"},
		{zapcore.DebugLevel, "debug true"},
	}

	entries := logs.AllUntimed()
	if len(entries) != len(tests) {
		t.Fatalf("\ngot %d entries, wanted %d", len(entries), len(tests))
	}
	for i, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if entries[i].Level != tt.level {
				t.Errorf("\ngot level %v, wanted %v", entries[i].Level, tt.level)
			}
			if entries[i].Message != tt.message {
				t.Errorf("\ngot message %q, wanted %q", entries[i].Message, tt.message)
			}
		})
	}
}

func TestSetDebug(t *testing.T) {
	SetDebug(true)
	if !level.Enabled(zapcore.DebugLevel) {
		t.Errorf("\ndebug level not enabled after SetDebug(true)")
	}
	SetDebug(false)
	if level.Enabled(zapcore.DebugLevel) {
		t.Errorf("\ndebug level still enabled after SetDebug(false)")
	}
}
