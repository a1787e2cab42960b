package notifier

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes messages to the logger instead of sending them.
// Used for local development with NOTIFIER=log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message at info. The recipient number is only logged at
// debug.
func (n *LogNotifier) Send(_ context.Context, target, message string) error {
	n.logger.Info("notification (not sent)", zap.String("message", message))
	n.logger.Debug("notification recipient", zap.String("to", target))
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
