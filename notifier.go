package accounts

import (
	"context"
)

// logNotifier is the fallback delivery collaborator: it records the
// destination of a reset request but never writes the token itself.
type logNotifier struct {
	logger Logger
}

// NewLogNotifier returns a Notifier that only logs where a reset token
// was headed. The token stays out of the logs; callers that need it
// delivered wire their own Notifier on the flow.
func NewLogNotifier(logger Logger) Notifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendResetToken(ctx context.Context, email, _ string) error {
	n.logger.Info("reset token issued, no delivery transport configured", "to", email)
	return nil
}
