package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPlayerID is the standardized structured logging key for player identifiers.
	FieldPlayerID = "player_id"
	// FieldMode is the standardized structured logging key for the vote mode (classic/deathmatch).
	FieldMode = "mode"
	// FieldToken is the standardized structured logging key for vote token values.
	FieldToken = "token"
)

type contextKey int

const (
	playerIDKey contextKey = iota
	modeKey
)

// WithPlayerID annotates the context with the acting player.
func WithPlayerID(ctx context.Context, playerID int64) context.Context {
	return context.WithValue(ctx, playerIDKey, playerID)
}

// PlayerIDFromContext extracts the acting player, when present.
func PlayerIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(playerIDKey).(int64)
	return id, ok
}

// WithMode annotates the context with the vote mode being handled.
func WithMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, modeKey, mode)
}

// ModeFromContext extracts the vote mode, when present.
func ModeFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	mode, ok := ctx.Value(modeKey).(string)
	return mode, ok
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := PlayerIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldPlayerID, id))
	}
	if mode, ok := ModeFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldMode, mode))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, attr := range fields {
		args = append(args, attr)
	}
	return logger.With(args...)
}
