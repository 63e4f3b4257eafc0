package domain

import "time"

const (
	RoleUser   = "user"
	RoleArtist = "artist"
	RoleAdmin  = "admin"
)

type Preferences struct {
	Genres          []string `json:"genres" bson:"genres"`
	FavoriteArtists []string `json:"favorite_artists" bson:"favorite_artists"`
}

type User struct {
	ID           string      `json:"id" bson:"_id"`
	Name         string      `json:"name" bson:"name"`
	Email        string      `json:"email" bson:"email"`
	PasswordHash string      `json:"-" bson:"password"`
	Location     string      `json:"location" bson:"location"`
	Preferences  Preferences `json:"preferences" bson:"preferences"`
	Role         string      `json:"role" bson:"role"`
	CreatedAt    time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" bson:"updated_at"`
}

// Profile is a user with the bookings looked up by purchaser id.
type Profile struct {
	User
	Bookings []Booking `json:"bookings"`
}
