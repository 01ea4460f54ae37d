package app

import (
	datamarket "github.com/openpool/datamarket"
	"go.uber.org/zap"
)

// NewZapSink returns an event sink that writes every event through the
// given logger. This is the default sink of a standalone engine, external
// indexers can replace it with their own implementation.
func NewZapSink(logger *zap.Logger) datamarket.EventSink {
	return zapSink{logger: logger}
}

type zapSink struct {
	logger *zap.Logger
}

func (s zapSink) Emit(ctx datamarket.Context, events []datamarket.Event) {
	for _, ev := range events {
		fields := make([]zap.Field, 0, len(ev.Attributes)+1)
		if height, ok := datamarket.GetHeight(ctx); ok {
			fields = append(fields, zap.Int64("height", height))
		}
		for _, attr := range ev.Attributes {
			fields = append(fields, zap.String(attr.Key, attr.Value))
		}
		s.logger.Info(ev.Type, fields...)
	}
}
