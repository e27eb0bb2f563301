// Package logging builds slog loggers for channelduel and carries the
// standardized structured-field conventions used across services.
package logging
