package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Info("xp granted", "actor_id", "ayu-lestari", "amount", 80)
	logger.DebugContext(context.Background(), "dropped below level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["actor_id"] != "ayu-lestari" || fields["amount"] != int64(80) {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestLogger_MirrorReceivesEnabledRecords(t *testing.T) {
	core, _ := observer.New(zapcore.WarnLevel)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.InfoContext(context.Background(), "ignored")
	logger.WarnContext(context.Background(), "notifier failed", "kind", "league_promoted")

	if len(got) != 1 || got[0] != "warn:notifier failed" {
		t.Fatalf("unexpected mirrored records: %v", got)
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected nop logger")
	}
}
