package service

import (
	"mqk-dashboard/internal/metrics"

	"go.uber.org/zap"
)

// Observer logs and counts the outcome of every management operation.
type Observer struct {
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewObserver(log *zap.Logger, m *metrics.Metrics) *Observer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Observer{log: log, metrics: m}
}

func (o *Observer) ok(op string) {
	o.metrics.RecordOperation(op, metrics.OutcomeSuccess)
}

// fail translates err, logs it under the operation label and returns the
// translated *Error. Unexpected failures surface only the generic message.
func (o *Observer) fail(op string, err error, dupMsg string) error {
	translated := translate(err, dupMsg)
	kind := KindOf(translated)
	o.metrics.RecordOperation(op, string(kind))

	if kind == KindDatabase {
		o.log.Error("operation failed", zap.String("operation", op), zap.Error(err))
	} else {
		o.log.Info("operation rejected", zap.String("operation", op), zap.String("kind", string(kind)), zap.Error(err))
	}
	return translated
}
