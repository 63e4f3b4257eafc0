package domain

import "time"

type Album struct {
	AlbumName   string    `json:"album_name" bson:"album_name"`
	ReleaseDate time.Time `json:"release_date" bson:"release_date"`
	Tracks      []string  `json:"tracks" bson:"tracks"`
}

type SocialMedia struct {
	Website   string `json:"website,omitempty" bson:"website,omitempty"`
	Facebook  string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty" bson:"twitter,omitempty"`
}

type Artist struct {
	ID          string      `json:"id" bson:"_id"`
	Name        string      `json:"name" bson:"name"`
	Bio         string      `json:"bio" bson:"bio"`
	Genres      []string    `json:"genre" bson:"genre"`
	Discography []Album     `json:"discography" bson:"discography"`
	SocialMedia SocialMedia `json:"social_media" bson:"social_media"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

// ArtistDetails carries the artist's upcoming events, looked up by
// artist id rather than stored on the artist.
type ArtistDetails struct {
	Artist
	UpcomingEvents []Event `json:"upcoming_events"`
}
