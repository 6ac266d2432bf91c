package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeLoggerRespectsPerHandlerLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	debug := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := TeeLogger(base, debug).With("experiment", "news")
	logger.Debug("trial detail")
	logger.Info("topic count complete")

	if strings.Contains(infoBuf.String(), "trial detail") {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "topic count complete") {
		t.Fatalf("info handler missing info record: %s", infoBuf.String())
	}
	for _, want := range []string{"trial detail", "topic count complete", `"experiment":"news"`} {
		if !strings.Contains(debugBuf.String(), want) {
			t.Fatalf("debug handler missing %q: %s", want, debugBuf.String())
		}
	}
}
