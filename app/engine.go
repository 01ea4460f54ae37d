package app

import (
	datamarket "github.com/openpool/datamarket"
)

// NewEngine returns a dispatcher that executes every transaction through
// the standard decorator stack wrapped around the given router: request
// logging, panic recovery and a deliver-time savepoint, in that order.
// This is the composition every deployment is expected to run; wiring the
// decorators by hand is only needed for custom stacks.
func NewEngine(db datamarket.CacheableKVStore, r *Router, opts ...DispatcherOption) *Dispatcher {
	stack := ChainDecorators(
		NewLogging(),
		NewRecovery(),
		NewSavepoint().OnDeliver(),
	).WithHandler(r)
	return NewDispatcher(db, stack, opts...)
}
