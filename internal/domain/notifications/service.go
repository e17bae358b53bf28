package notifications

import (
	"context"
	"log/slog"
)

// Mailer is the outbound email boundary. The platform email package provides
// an SMTP implementation and a noop when email is disabled.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type message struct {
	To      string
	Subject string
	Body    string
}

// Service dispatches notifications from a background worker. Sends are
// fire-and-forget: a failed send is logged and never fails or rolls back the
// ledger transaction that triggered it.
type Service struct {
	mailer Mailer
	from   string
	queue  chan message
}

func New(mailer Mailer, from string) *Service {
	return &Service{
		mailer: mailer,
		from:   from,
		queue:  make(chan message, 128),
	}
}

// Start launches the dispatcher. It drains the queue until ctx is done.
func (s *Service) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-s.queue:
				if err := s.mailer.Send(ctx, s.from, msg.To, msg.Subject, msg.Body); err != nil {
					slog.Warn("notification send failed", "to", msg.To, "subject", msg.Subject, "err", err)
				}
			}
		}
	}()
}

// Enqueue queues a notification. A full queue drops the message with a
// warning rather than blocking the request path.
func (s *Service) Enqueue(to, subject, body string) {
	if to == "" {
		return
	}
	select {
	case s.queue <- message{To: to, Subject: subject, Body: body}:
	default:
		slog.Warn("notification queue full", "to", to, "subject", subject)
	}
}
