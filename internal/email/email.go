package email

import (
	"context"
	"log/slog"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender hands messages to the mail relay. Delivery itself is outside this
// service, so the sender only records what would go out.
type Sender struct {
	logger *slog.Logger
	from   string
}

func NewSender(logger *slog.Logger, from string) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger, from: from}
}

func (s *Sender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "send email",
		slog.String("from", s.from),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)),
	)
	return nil
}
