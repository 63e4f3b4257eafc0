package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SREENATHREDDY1234/music-freak/internal/kafka"
)

// Sender delivers booking notifications. Delivery is a structured log line;
// a mail provider is not wired.
type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject, err := Subject(event)
	if err != nil {
		return err
	}
	tickets := 0
	for _, it := range event.Tickets {
		tickets += it.Quantity
	}
	s.logger.InfoContext(ctx, "send email",
		"to", event.Email,
		"subject", subject,
		"booking_id", event.BookingID,
		"event_id", event.EventID,
		"tickets", tickets,
		"total_cents", event.TotalAmountCents,
	)
	return nil
}

func Subject(event kafka.BookingEvent) (string, error) {
	name := event.EventName
	if name == "" {
		name = event.EventID
	}
	switch event.Type {
	case kafka.BookingCreated:
		return fmt.Sprintf("Your tickets for %s are confirmed", name), nil
	case kafka.BookingCancelled:
		return fmt.Sprintf("Your booking for %s was cancelled", name), nil
	default:
		return "", fmt.Errorf("unsupported notification type %q", event.Type)
	}
}
