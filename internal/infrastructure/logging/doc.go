// Package logging provides structured logging for MySController.
//
// It wraps log/slog so every component logs through the same handler:
// JSON output for production, text for development, level filtering and
// default service/version fields on every entry.
//
// Components that want to stay decoupled from this package accept a small
// Logger interface (Debug/Info/Warn/Error) which *logging.Logger satisfies.
package logging
