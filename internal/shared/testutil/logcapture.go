package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log line
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler records every log line so tests can assert on them.
// Attributes bound with Logger.With are kept and merged into each record.
type CaptureHandler struct {
	mu      *sync.Mutex
	records *[]LogRecord
	bound   []slog.Attr
	t       *testing.T
}

// NewCaptureHandler creates an empty capture handler
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	return &CaptureHandler{
		mu:      &sync.Mutex{},
		records: &[]LogRecord{},
		t:       t,
	}
}

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.bound)+r.NumAttrs())
	for _, a := range h.bound {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	*h.records = append(*h.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// Enabled implements slog.Handler
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.bound = append(append([]slog.Attr(nil), h.bound...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *CaptureHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of everything captured so far
func (h *CaptureHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(*h.records))
	copy(out, *h.records)
	return out
}

// ContainsMessage reports whether any record at level contains msg
func (h *CaptureHandler) ContainsMessage(level slog.Level, msg string) bool {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, msg) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries key=value
func (h *CaptureHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// NewTestLogger returns a logger backed by a capture handler
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := NewCaptureHandler(t)
	return slog.New(h), h
}

// AssertLogContains fails the test when no record at level contains msg
func AssertLogContains(t *testing.T, h *CaptureHandler, level slog.Level, msg string) {
	t.Helper()
	if !h.ContainsMessage(level, msg) {
		t.Errorf("expected %s log containing %q", level, msg)
		for _, r := range h.Records() {
			t.Logf("  - [%s] %s", r.Level, r.Message)
		}
	}
}
