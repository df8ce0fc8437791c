package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogAdapter stands in for a real provider when outbound email is
// disabled. It logs the message envelope and reports success so the
// rest of the notification flow behaves exactly as in production.
type LogAdapter struct {
	log *zap.Logger
}

func NewLogAdapter(log *zap.Logger) *LogAdapter {
	return &LogAdapter{log: log}
}

func (a *LogAdapter) Send(_ context.Context, msg Message) error {
	a.log.Info("simulated email send",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}
