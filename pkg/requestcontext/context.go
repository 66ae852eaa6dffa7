// Package requestcontext provides HTTP-independent accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// set by middleware at the authentication boundary but consumed by services. By
// keeping this package free of net/http dependencies, services can import only what
// they need without pulling in HTTP-related code.
//
// Usage in services (read values):
//
//	rc, ok := requestcontext.From(ctx)
//	actorID := requestcontext.ActorID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (establish a scope):
//
//	ctx = requestcontext.With(ctx, requestcontext.New(userID, role))
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Context carries the identity established for one inbound request. It is
// created once at the authentication boundary, is read-only afterwards, and
// travels with the request's context.Context so concurrent requests can never
// observe each other's values.
type Context struct {
	RequestID string
	ActorID   string
	ActorRole string
}

// Context key types (unexported for encapsulation).
type (
	requestContextKey struct{}
	requestTimeKey    struct{}
)

// New builds a Context with a fresh correlation ID. ActorID and ActorRole may
// be empty for anonymous access.
func New(actorID, actorRole string) Context {
	return Context{
		RequestID: uuid.NewString(),
		ActorID:   actorID,
		ActorRole: actorRole,
	}
}

// With binds a request context to ctx. Everything executing under the returned
// context, including goroutines it spawns, observes the same Context via From.
func With(ctx context.Context, rc Context) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// From retrieves the request context bound to ctx. The second return value is
// false when called outside any request scope (background jobs, startup
// seeding), and callers are expected to treat that as "no attributable actor".
func From(ctx context.Context) (Context, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(Context)
	return rc, ok
}

// RequestID retrieves the correlation ID from the context, or "" if no request
// scope is active.
func RequestID(ctx context.Context) string {
	if rc, ok := From(ctx); ok {
		return rc.RequestID
	}
	return ""
}

// ActorID retrieves the authenticated actor ID from the context, or "" when
// anonymous or outside a request scope.
func ActorID(ctx context.Context) string {
	if rc, ok := From(ctx); ok {
		return rc.ActorID
	}
	return ""
}

// ActorRole retrieves the authenticated actor's role from the context.
func ActorRole(ctx context.Context) string {
	if rc, ok := From(ctx); ok {
		return rc.ActorRole
	}
	return ""
}

// Now retrieves the request-scoped time from context. Falls back to time.Now()
// for non-HTTP contexts such as workers, CLI commands, and tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context so all operations within one
// request share a single "now". Also useful for tests that need deterministic
// timestamps.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
