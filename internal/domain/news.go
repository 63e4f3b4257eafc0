package domain

import "time"

type NewsCategory string

const (
	NewsCategoryNewRelease    NewsCategory = "New Release"
	NewsCategoryTour          NewsCategory = "Tour"
	NewsCategoryCollaboration NewsCategory = "Collaboration"
	NewsCategoryExclusive     NewsCategory = "Exclusive"
	NewsCategoryAward         NewsCategory = "Award"
)

type SocialShares struct {
	Twitter   int `json:"twitter" bson:"twitter"`
	Facebook  int `json:"facebook" bson:"facebook"`
	Instagram int `json:"instagram" bson:"instagram"`
}

type News struct {
	ID            string       `json:"id" bson:"_id"`
	Title         string       `json:"title" bson:"title"`
	Content       string       `json:"content" bson:"content"`
	Category      NewsCategory `json:"category" bson:"category"`
	ArtistID      string       `json:"artist_id" bson:"artist_id"`
	PublishDate   time.Time    `json:"publish_date" bson:"publish_date"`
	FeaturedImage string       `json:"featured_image,omitempty" bson:"featured_image,omitempty"`
	SocialShares  SocialShares `json:"social_shares" bson:"social_shares"`
	Tags          []string     `json:"tags" bson:"tags"`
}
