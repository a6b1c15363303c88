package observability

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestLoggerRoundTrip(t *testing.T) {
	lg := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := ContextWithLogger(context.Background(), lg)
	if got := LoggerFromContext(ctx); got != lg {
		t.Fatal("expected stored logger")
	}
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Fatal("expected default logger when unset")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("want empty, got %q", got)
	}
	// Empty ids are not stored.
	ctx = ContextWithRequestID(context.Background(), "")
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("want empty, got %q", got)
	}
}
