package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	l, err := New("prod", "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error must be enabled at warn level")
	}

	d, err := New("dev", "debug")
	if err != nil {
		t.Fatalf("New(dev): %v", err)
	}
	if !d.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must be enabled")
	}
}

func TestNew_BadLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("prod", "loud"); err == nil {
		t.Fatalf("want error on unknown level")
	}
}
