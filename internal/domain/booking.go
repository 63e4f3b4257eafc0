package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// LineItem references a ticket category of the booked event by id.
type LineItem struct {
	CategoryID     string `json:"ticket_type" bson:"ticket_type"`
	Quantity       int    `json:"quantity" bson:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents" bson:"unit_price_cents"`
}

type Booking struct {
	ID               string        `json:"id" bson:"_id"`
	PurchaserID      string        `json:"user_id" bson:"user_id"`
	PurchaserEmail   string        `json:"email" bson:"email"`
	EventID          string        `json:"event_id" bson:"event_id"`
	Tickets          []LineItem    `json:"tickets" bson:"tickets"`
	TotalAmountCents int64         `json:"total_amount_cents" bson:"total_amount_cents"`
	PaymentStatus    PaymentStatus `json:"payment_status" bson:"payment_status"`
	CreatedAt        time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" bson:"updated_at"`
}
