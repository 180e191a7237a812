package email

import (
	"context"
	"log/slog"
)

// DevSender logs outbound messages instead of delivering them. It validates
// params the same way the real client does so development catches malformed
// sends early.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a logging sender. A nil logger falls back to the
// default slog logger.
func NewDevSender(log *slog.Logger) *DevSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

func (s *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "dev email sender: message not delivered",
		slog.String("to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	return nil
}
