package shared

import (
	"context"

	"github.com/google/uuid"
)

// Caller identifies who invokes a ledger operation.
// TenantID scopes every read and write; UserID is the collaborative lock holder.
type Caller struct {
	TenantID uuid.UUID
	UserID   string
}

type callerKey struct{}

// WithCaller stores the caller on the context
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored by WithCaller
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

type correlationKey struct{}

// WithCorrelationID stores the request correlation id on the context
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFrom returns the id stored by WithCorrelationID, or ""
func CorrelationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
