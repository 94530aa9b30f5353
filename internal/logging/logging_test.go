package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFieldHelpers(t *testing.T) {
	if f := String("k", "v"); f.Key != "k" || f.Value != "v" {
		t.Fatalf("String field = %+v", f)
	}
	if f := Int("n", 3); f.Value != 3 {
		t.Fatalf("Int field = %+v", f)
	}
	if f := Uint64("u", 7); f.Value != uint64(7) {
		t.Fatalf("Uint64 field = %+v", f)
	}
	if f := Float64("x", 1.5); f.Value != 1.5 {
		t.Fatalf("Float64 field = %+v", f)
	}
	if f := Duration("d", time.Second); f.Value != time.Second {
		t.Fatalf("Duration field = %+v", f)
	}
}

func TestNewDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	for _, cfg := range []Config{
		{},
		{Level: "debug", Format: "json"},
		{Level: "error", Format: "text", AddSource: true},
	} {
		log := New(cfg)
		log.Info(ctx, "hello", String("who", "test"))
		log.With(Int("step", 1)).Debug(ctx, "derived")
	}
}

func TestNoopLogger(t *testing.T) {
	log := Noop()
	log.Info(context.Background(), "dropped")
	if log.With(String("k", "v")) == nil {
		t.Fatal("Noop With returned nil")
	}
}
