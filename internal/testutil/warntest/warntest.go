// Package warntest records the soft warnings emitted through apperr.Warn.
package warntest

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// Recorder collects warning records.
type Recorder struct {
	mu      sync.Mutex
	records []slog.Record
}

// Capture installs a Recorder as the default slog handler for the duration
// of the test. Tests using it must not run in parallel.
func Capture(t *testing.T) *Recorder {
	t.Helper()
	rec := &Recorder{}
	prev := slog.Default()
	slog.SetDefault(slog.New(rec))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return rec
}

// Categories returns the category attribute of every warning, in order.
func (r *Recorder) Categories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		rec.Attrs(func(a slog.Attr) bool {
			if a.Key == "category" {
				out = append(out, a.Value.String())
				return false
			}
			return true
		})
	}
	return out
}

// Messages returns the message of every warning, in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Message)
	}
	return out
}

// Len returns the number of warnings recorded.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec.Clone())
	return nil
}

func (r *Recorder) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *Recorder) WithGroup(string) slog.Handler { return r }
