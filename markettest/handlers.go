package markettest

import datamarket "github.com/openpool/datamarket"

// Handler is a mock implementation of the datamarket.Handler interface,
// counting calls and returning declared results.
type Handler struct {
	checkCall   int
	CheckResult datamarket.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult datamarket.DeliverResult
	DeliverErr    error
}

var _ datamarket.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	h.checkCall++
	return &h.CheckResult, h.CheckErr
}

func (h *Handler) Deliver(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	h.deliverCall++
	return &h.DeliverResult, h.DeliverErr
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
