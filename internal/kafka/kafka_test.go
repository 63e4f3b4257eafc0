package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBookingEvent(t *testing.T) {
	in := BookingEvent{
		Type:             BookingCreated,
		BookingID:        "b1",
		EventID:          "e1",
		UserID:           "u1",
		Email:            "fan@example.com",
		Tickets:          []domain.LineItem{{CategoryID: "vip", Quantity: 2, UnitPriceCents: 15000}},
		TotalAmountCents: 30000,
		Status:           string(domain.PaymentStatusCompleted),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeBookingEvent(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeBookingEventRejectsIncomplete(t *testing.T) {
	_, err := DecodeBookingEvent([]byte(`{"type":"booking_created"}`))
	assert.Error(t, err)

	_, err = DecodeBookingEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestCheckConnectionWithoutBrokers(t *testing.T) {
	p := NewProducer(nil, nil)
	defer p.Close()
	assert.Error(t, p.CheckConnection(context.Background()))
}

func TestPublishWithRetryStopsOnCancelledContext(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, nil)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := p.PublishWithRetry(ctx, "bookings", "b1", BookingEvent{Type: BookingCreated, BookingID: "b1"}, 5)
	assert.Error(t, err)
}
