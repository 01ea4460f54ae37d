package datamarket

import (
	"encoding/json"
)

// CheckResult captures any non-error response from the validation phase of
// a handler.
type CheckResult struct {
	// Log contains a short free form description of the check outcome.
	Log string
}

// DeliverResult captures any non-error response from the execution of a
// handler.
type DeliverResult struct {
	// Data is a machine-parseable return value, like the id of a created
	// entity or the amount settled by a claim.
	Data []byte

	// Log contains a short free form description of the operation outcome.
	Log string

	// Events are the domain events emitted by this operation, for
	// external indexing and notification. Engine correctness never
	// depends on their delivery.
	Events []Event
}

// Handler is a core engine that can process a few specific messages.
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality like
// authentication or savepoint management, to many Handlers.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler, the setup side of a
// router.
type Registry interface {
	// Handle assigns given handler to handle processing of every message
	// of provided type.
	Handle(Msg, Handler)
}

// Options are the initialization options. Each extension can look up its
// key and parse the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key, and parses the
// json into the given obj. Returns an error if it cannot parse. Noop and no
// error if key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize extensions from the
// genesis configuration.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
