package app

import (
	"time"

	datamarket "github.com/openpool/datamarket"
	"go.uber.org/zap"
)

// Logging is a decorator to log messages as they pass through. Errors are
// logged with their full stack trace.
type Logging struct{}

var _ datamarket.Decorator = Logging{}

// NewLogging creates a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> warn, success -> debug.
func (Logging) Check(ctx datamarket.Context, store datamarket.KVStore, tx datamarket.Tx, next datamarket.Checker) (*datamarket.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)

	logger := datamarket.GetLogger(ctx).With(
		zap.String("path", msgPath(tx)),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		logger.Warn("check failed", zap.Error(err))
	} else {
		logger.Debug("check", zap.String("log", res.Log))
	}
	return res, err
}

// Deliver logs error -> error, success -> info.
func (Logging) Deliver(ctx datamarket.Context, store datamarket.KVStore, tx datamarket.Tx, next datamarket.Deliverer) (*datamarket.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)

	logger := datamarket.GetLogger(ctx).With(
		zap.String("path", msgPath(tx)),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		logger.Error("deliver failed", zap.Error(err))
	} else {
		logger.Info("deliver", zap.String("log", res.Log))
	}
	return res, err
}

// msgPath is for logging only, a failure to extract the message must not
// alter the transaction outcome.
func msgPath(tx datamarket.Tx) string {
	msg, err := tx.GetMsg()
	if err != nil || msg == nil {
		return "?"
	}
	return msg.Path()
}
