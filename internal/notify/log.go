package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log writes notifications to a zap logger. Failures log at warn level.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(_ context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		return nil
	}

	fields := []zap.Field{
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	}
	if n.Slot != nil {
		fields = append(fields, zap.Stringer("slot", *n.Slot))
	}

	if n.Kind == KindFailure {
		logger.Warn("notification", fields...)
	} else {
		logger.Info("notification", fields...)
	}
	return nil
}
