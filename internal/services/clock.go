package services

import (
	"context"
	"time"

	"github.com/sjperalta/arrendamientos-api/internal/calc"
)

// Clock supplies the current time to date-dependent operations
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant. The CLI uses it to replay a
// sweep for a past date.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// today returns the clock's calendar date as midnight UTC
func today(c Clock) time.Time {
	return calc.DateOnly(c.Now())
}

type actorKey struct{}

// WithActor tags ctx with who triggered the operation, for the audit trail
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored in ctx, or def when none is set
func ActorFrom(ctx context.Context, def string) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return def
}
