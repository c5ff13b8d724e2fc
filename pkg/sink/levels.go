package sink

import (
	"log/slog"

	"mercator-hq/sieve/pkg/callsite"
)

// slog levels for each severity. The four standard slog levels keep their
// values so downstream handlers filter sensibly; the rest fill the gaps.
const (
	LevelMethod    = slog.LevelDebug - 4
	LevelDebug     = slog.LevelDebug
	LevelInfo      = slog.LevelInfo
	LevelNotice    = slog.LevelInfo + 2
	LevelWarning   = slog.LevelWarn
	LevelError     = slog.LevelError
	LevelCritical  = slog.LevelError + 4
	LevelAlert     = slog.LevelError + 8
	LevelEmergency = slog.LevelError + 12
)

var severityLevels = map[callsite.Severity]slog.Level{
	callsite.MethodName: LevelMethod,
	callsite.Debug:      LevelDebug,
	callsite.Info:       LevelInfo,
	callsite.Notice:     LevelNotice,
	callsite.Warning:    LevelWarning,
	callsite.Error:      LevelError,
	callsite.Critical:   LevelCritical,
	callsite.Alert:      LevelAlert,
	callsite.Emergency:  LevelEmergency,
}

var levelLabels = func() map[slog.Level]string {
	labels := make(map[slog.Level]string, len(severityLevels))
	for sev, level := range severityLevels {
		labels[level] = sev.String()
	}
	return labels
}()

// Level maps a severity to its slog level. Unknown severities map to Info.
func Level(severity callsite.Severity) slog.Level {
	if level, ok := severityLevels[severity]; ok {
		return level
	}
	return LevelInfo
}

// renameLevel prints severity labels instead of slog's "DEBUG-4" style names.
func renameLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) != 0 || a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	if label, ok := levelLabels[level]; ok {
		a.Value = slog.StringValue(label)
	}
	return a
}
