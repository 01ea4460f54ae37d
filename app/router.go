package app

import (
	"fmt"
	"regexp"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

// Router allows us to register many handlers with different paths and then
// direct each message to the registered handler.
type Router struct {
	routes map[string]datamarket.Handler
}

var _ datamarket.Registry = (*Router)(nil)
var _ datamarket.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]datamarket.Handler),
	}
}

// A valid path is the message path declared by the extension, for example
// "datapool/create".
var isPath = regexp.MustCompile(`^[a-z0-9_/]{4,32}$`).MatchString

// Handle adds a new route to the router. This function panics if a message
// path is invalid or if a handler for that path was already registered.
func (r *Router) Handle(m datamarket.Msg, h datamarket.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %q", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this message, or a notFound
// stub when no handler was registered for its path.
func (r *Router) handler(m datamarket.Msg) datamarket.Handler {
	if h, ok := r.routes[m.Path()]; ok {
		return h
	}
	return notFoundHandler(m.Path())
}

// Check dispatches to the proper handler based on the message path.
func (r *Router) Check(ctx datamarket.Context, store datamarket.KVStore, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on the message path.
func (r *Router) Deliver(ctx datamarket.Context, store datamarket.KVStore, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg).Deliver(ctx, store, tx)
}

// notFoundHandler always returns an unregistered path error, for both Check
// and Deliver.
type notFoundHandler string

func (h notFoundHandler) Check(ctx datamarket.Context, store datamarket.KVStore, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(h))
}

func (h notFoundHandler) Deliver(ctx datamarket.Context, store datamarket.KVStore, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(h))
}
