package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
)

const (
	BookingCreated   = "booking_created"
	BookingCancelled = "booking_cancelled"
)

// BookingEvent is published on every committed booking or cancellation.
type BookingEvent struct {
	Type             string            `json:"type"`
	BookingID        string            `json:"booking_id"`
	EventID          string            `json:"event_id"`
	EventName        string            `json:"event_name"`
	UserID           string            `json:"user_id"`
	Email            string            `json:"email"`
	Tickets          []domain.LineItem `json:"tickets"`
	TotalAmountCents int64             `json:"total_amount_cents"`
	Status           string            `json:"status"`
	OccurredAt       time.Time         `json:"occurred_at"`
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var ev BookingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if ev.Type == "" || ev.BookingID == "" {
		return BookingEvent{}, fmt.Errorf("decode booking event: missing type or booking id")
	}
	return ev, nil
}
