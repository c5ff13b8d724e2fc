package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerKey        contextKey = "logger"
	policyVersionKey contextKey = "policy_version"
)

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default. When a
// policy version is present it is attached as a field.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok || logger == nil {
		logger = slog.Default()
	}
	if v := GetPolicyVersion(ctx); v != "" {
		logger = logger.With("policy_version", v)
	}
	return logger
}

// WithPolicyVersion adds the active policy version to the context.
func WithPolicyVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, policyVersionKey, version)
}

// GetPolicyVersion retrieves the policy version from the context.
func GetPolicyVersion(ctx context.Context) string {
	if v, ok := ctx.Value(policyVersionKey).(string); ok {
		return v
	}
	return ""
}
