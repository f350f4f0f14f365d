package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxDriverID   contextKey = "driver_id"
	ctxDriverName contextKey = "driver_name"
)

// DriverIDFromContext returns the authenticated driver's id, or uuid.Nil.
func DriverIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxDriverID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// DriverNameFromContext returns the authenticated driver's display name.
func DriverNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxDriverName).(string); ok {
		return v
	}
	return ""
}

// WithDriver injects the driver identity into the context. Tests use this to
// call protected handlers directly.
func WithDriver(ctx context.Context, driverID uuid.UUID, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxDriverID, driverID)
	return context.WithValue(ctx, ctxDriverName, name)
}
