package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogPattern matches files created by OpenRunLog.
const RunLogPattern = "sweep-*.log"

// RunLog is a per-sweep JSON log file. Every record written through Handler
// carries the run_id attribute.
type RunLog struct {
	Path    string
	Handler slog.Handler
	file    *os.File
}

// OpenRunLog creates <dir>/sweep-<experiment>-<timestamp>.log.
func OpenRunLog(dir, experiment, runID, level string) (*RunLog, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("run log: directory not configured")
	}
	name := fmt.Sprintf("sweep-%s-%s.log", sanitize(experiment), time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)
	file, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return &RunLog{
		Path:    path,
		Handler: newRunIDHandler(newJSONHandler(file, levelVar, false), runID),
		file:    file,
	}, nil
}

// Close flushes and closes the underlying file.
func (r *RunLog) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// runIDHandler injects a run_id attribute into all records.
type runIDHandler struct {
	base  slog.Handler
	runID string
}

func newRunIDHandler(base slog.Handler, runID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &runIDHandler{base: base, runID: runID}
}

func (h *runIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *runIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldRunID, h.runID))
	return h.base.Handle(ctx, record)
}

func (h *runIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runIDHandler{base: h.base.WithAttrs(attrs), runID: h.runID}
}

func (h *runIDHandler) WithGroup(name string) slog.Handler {
	return &runIDHandler{base: h.base.WithGroup(name), runID: h.runID}
}
