package apperr

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWarnCategory(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	Warn(WarnTarget, "no PA given, assuming 0", slog.String("target", "M31"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", rec["level"])
	}
	if rec["category"] != WarnTarget {
		t.Errorf("category = %v, want %q", rec["category"], WarnTarget)
	}
	if rec["target"] != "M31" {
		t.Errorf("target = %v, want M31", rec["target"])
	}
}
