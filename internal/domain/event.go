package domain

import "time"

type TicketType string

const (
	TicketTypeVIP      TicketType = "VIP"
	TicketTypeGeneral  TicketType = "General"
	TicketTypePremium  TicketType = "Premium"
	TicketTypeGold     TicketType = "Gold"
	TicketTypeSilver   TicketType = "Silver"
	TicketTypePlatinum TicketType = "Platinum"
)

// TicketCategory is a priced quantity pool of one event. Invariant:
// 0 <= Available <= TotalQuantity.
type TicketCategory struct {
	ID            string     `json:"id" bson:"id"`
	Type          TicketType `json:"type" bson:"type"`
	PriceCents    int64      `json:"price_cents" bson:"price_cents"`
	TotalQuantity int        `json:"total_quantity" bson:"total_quantity"`
	Available     int        `json:"available" bson:"available"`
}

// GeoPoint is a GeoJSON point, coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Lng() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

type Venue struct {
	Name     string   `json:"name" bson:"name"`
	Address  string   `json:"address" bson:"address"`
	City     string   `json:"city" bson:"city"`
	Location GeoPoint `json:"location" bson:"location"`
}

type Event struct {
	ID          string           `json:"id" bson:"_id"`
	Name        string           `json:"name" bson:"name"`
	Date        time.Time        `json:"date" bson:"date"`
	ArtistID    string           `json:"artist_id" bson:"artist_id"`
	Venue       Venue            `json:"venue" bson:"venue"`
	TicketTypes []TicketCategory `json:"ticket_types" bson:"ticket_types"`
	Version     int64            `json:"version" bson:"version"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" bson:"updated_at"`
}

// Clone returns a copy whose ticket categories can be mutated without
// touching the receiver.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.TicketTypes = append([]TicketCategory(nil), e.TicketTypes...)
	if e.Venue.Location.Coordinates != nil {
		c.Venue.Location.Coordinates = append([]float64(nil), e.Venue.Location.Coordinates...)
	}
	return &c
}

// Category returns the category with the given id, or nil.
func (e *Event) Category(id string) *TicketCategory {
	for i := range e.TicketTypes {
		if e.TicketTypes[i].ID == id {
			return &e.TicketTypes[i]
		}
	}
	return nil
}

// EventDetails is an event with its artist resolved for API responses.
type EventDetails struct {
	Event
	Artist *Artist `json:"artist,omitempty"`
}
