package apperr

import (
	"context"
	"log/slog"
)

// Warning categories reported through Warn.
const (
	WarnOffset         = "OffsetWarning"
	WarnTarget         = "TargetWarning"
	WarnDetectorConfig = "DetectorConfigWarning"
	WarnUploadFailed   = "UploadFailed"
)

// Warn reports a soft issue on the default logger. Warnings never stop
// processing; install a handler on slog.Default to collect them.
func Warn(category, msg string, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("category", category))
	slog.Default().LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}
