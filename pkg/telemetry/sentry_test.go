package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestInitWithoutDsnIsNoop(t *testing.T) {
	flush, err := Init(Config{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	flush()
}

func TestNewReporter(t *testing.T) {
	if _, ok := NewReporter(Config{}).(LogReporter); !ok {
		t.Errorf("expected log reporter without dsn")
	}
	if _, ok := NewReporter(Config{DSN: "https://key@sentry.example.com/1"}).(SentryReporter); !ok {
		t.Errorf("expected sentry reporter with dsn")
	}
}

func TestReportersDoNotPanic(t *testing.T) {
	LogReporter{}.Report(context.Background(), "test", errors.New("boom"))
	SentryReporter{}.Report(context.Background(), "test", errors.New("boom"))
}
