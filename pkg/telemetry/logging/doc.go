// Package logging builds the structured slog logger sieve uses for its own
// diagnostics: policy reloads, sink failures and command output.
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	if err != nil {
//	    return err
//	}
//	logger.Info("Policy loaded", "version", snap.Version)
//
// Formats are "json", "text" and "console" (text without timestamps).
// Loggers can travel in a context with WithLogger and FromContext.
package logging
