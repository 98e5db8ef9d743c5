// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them without
// importing net/http.
package requestcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type (
	userIDKey      struct{}
	orgIDKey       struct{}
	orgNameKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the authenticated user, or uuid.Nil when unauthenticated.
func UserID(ctx context.Context) uuid.UUID {
	if v, ok := ctx.Value(userIDKey{}).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func WithOrgID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, orgIDKey{}, id)
}

// OrgID returns the tenant scope of the request, or uuid.Nil.
func OrgID(ctx context.Context) uuid.UUID {
	if v, ok := ctx.Value(orgIDKey{}).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func WithOrgName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, orgNameKey{}, name)
}

// OrgName returns the display name of the tenant organization, or "".
func OrgName(ctx context.Context) string {
	if v, ok := ctx.Value(orgNameKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithTime pins the request time; tests use it to make time-dependent logic
// deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return v
	}
	return time.Now()
}
