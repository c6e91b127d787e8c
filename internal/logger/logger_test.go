package logger_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
)

func TestFatalWritesEntryBeforeExit(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	// Panic instead of os.Exit so the test survives the fatal call.
	log := &logger.Logger{SugaredLogger: zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic)).Sugar()}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected Fatal to stop the caller")
			}
		}()
		log.With("service", "server").Fatal("server stopped", "error", "listen tcp: address in use")
	}()

	entries := logs.FilterMessage("server stopped").All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.FatalLevel {
		t.Errorf("expected fatal level, got %s", e.Level)
	}
	fields := e.ContextMap()
	if fields["error"] != "listen tcp: address in use" || fields["service"] != "server" {
		t.Errorf("unexpected fields %v", fields)
	}
}
