package app

import (
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

// Recovery is a decorator to recover from panics in transactions, so they
// surface as normal errors instead of taking the process down.
type Recovery struct{}

var _ datamarket.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors.
func (Recovery) Check(ctx datamarket.Context, store datamarket.KVStore, tx datamarket.Tx, next datamarket.Checker) (res *datamarket.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors.
func (Recovery) Deliver(ctx datamarket.Context, store datamarket.KVStore, tx datamarket.Tx, next datamarket.Deliverer) (res *datamarket.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
