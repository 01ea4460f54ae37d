package app

import (
	"sync"
	"time"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"go.uber.org/zap"
)

// Dispatcher is the front door of the engine. It owns the backing store and
// the decorated handler stack, and it serializes all state transitions so
// that handlers never observe a partially applied operation.
type Dispatcher struct {
	mu      sync.Mutex
	db      datamarket.CacheableKVStore
	handler datamarket.Handler
	sink    datamarket.EventSink
	logger  *zap.Logger
	height  int64
}

// DispatcherOption configures a Dispatcher during creation.
type DispatcherOption func(*Dispatcher)

// WithEventSink directs domain events of delivered transactions to the
// given sink. Without this option events are dropped.
func WithEventSink(sink datamarket.EventSink) DispatcherOption {
	return func(d *Dispatcher) {
		d.sink = sink
	}
}

// WithLogger attaches a logger to every execution context.
func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher returns a dispatcher executing all transactions through the
// given handler stack on top of the given store.
func NewDispatcher(db datamarket.CacheableKVStore, handler datamarket.Handler, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		db:      db,
		handler: handler,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Check validates the transaction against the current state. Writes made
// during the check are always discarded.
func (d *Dispatcher) Check(ctx datamarket.Context, now time.Time, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cache := d.db.CacheWrap()
	defer cache.Discard()

	ctx = d.prepare(ctx, now)
	return d.handler.Check(ctx, cache, tx)
}

// Deliver executes the transaction. On success all writes are applied to
// the backing store and the emitted events are passed to the sink. On error
// no state is changed.
func (d *Dispatcher) Deliver(ctx datamarket.Context, now time.Time, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cache := d.db.CacheWrap()
	ctx = d.prepare(ctx, now)

	res, err := d.handler.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if werr := cache.Write(); werr != nil {
		return nil, errors.Wrap(werr, "cannot commit")
	}
	if d.sink != nil && len(res.Events) > 0 {
		d.sink.Emit(ctx, res.Events)
	}
	return res, nil
}

// prepare builds the execution context of a single transaction. The caller
// provides the current time, the dispatcher never reads the wall clock.
func (d *Dispatcher) prepare(ctx datamarket.Context, now time.Time) datamarket.Context {
	d.height++
	ctx = datamarket.WithHeight(ctx, d.height)
	ctx = datamarket.WithBlockTime(ctx, now)
	ctx = datamarket.WithLogger(ctx, d.logger)
	return ctx
}
