package datamarket

import (
	"context"
	"time"

	"github.com/openpool/datamarket/errors"
)

// Context is just a synonym for the standard implementation. The engine
// passes it between the dispatcher and every handler to carry injected
// request scoped values, most importantly the current time.
type Context = context.Context

type contextKey int

const (
	contextKeyTime contextKey = iota
	contextKeyHeight
)

// WithBlockTime sets the current time for the execution context. The engine
// must never read the wall clock directly but instead rely on the value
// provided by the hosting environment.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyTime, t.UTC())
}

// BlockTime returns the current time as declared for this execution context.
// An error is returned when the time was not provided, which means the
// context was not properly initialized.
func BlockTime(ctx Context) (time.Time, error) {
	val, ok := ctx.Value(contextKeyTime).(time.Time)
	if !ok {
		return time.Time{}, errors.Wrap(errors.ErrHuman, "block time not present in the context")
	}
	return val, nil
}

// WithHeight sets the sequence number of the currently executed state
// change. It is provided by the hosting environment and is monotonically
// increasing.
func WithHeight(ctx Context, height int64) Context {
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the current operation sequence number if present.
func GetHeight(ctx Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// IsExpired returns true if given time is in the past as compared to the
// "now" as declared for the context. Expiration is inclusive, meaning that
// if current time is equal to the expiration time then this function
// returns true.
//
// This function panics if the context was not initialized with a time.
func IsExpired(ctx Context, t UnixTime) bool {
	now, err := BlockTime(ctx)
	if err != nil {
		panic(err)
	}
	return t <= AsUnixTime(now)
}
