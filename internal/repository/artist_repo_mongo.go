package repository

import (
	"context"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoArtistRepository struct {
	col *mongo.Collection
}

func NewMongoArtistRepository(db *mongo.Database) ArtistRepository {
	return &MongoArtistRepository{col: db.Collection(ArtistsCollection)}
}

func (r *MongoArtistRepository) List(ctx context.Context) ([]domain.Artist, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Artist](ctx, cursor)
}

func (r *MongoArtistRepository) GetByID(ctx context.Context, id string) (*domain.Artist, error) {
	var a domain.Artist
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, mongoError(err)
	}
	return &a, nil
}

func (r *MongoArtistRepository) Create(ctx context.Context, a *domain.Artist) error {
	if a.Genres == nil {
		a.Genres = []string{}
	}
	if a.Discography == nil {
		a.Discography = []domain.Album{}
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, a)
	return mongoError(err)
}

func (r *MongoArtistRepository) Update(ctx context.Context, a *domain.Artist) error {
	if a.Genres == nil {
		a.Genres = []string{}
	}
	if a.Discography == nil {
		a.Discography = []domain.Album{}
	}
	update := bson.M{"$set": bson.M{
		"name":         a.Name,
		"bio":          a.Bio,
		"genre":        a.Genres,
		"discography":  a.Discography,
		"social_media": a.SocialMedia,
		"updated_at":   time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": a.ID}, update, opts).Decode(a); err != nil {
		return mongoError(err)
	}
	return nil
}

func (r *MongoArtistRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ ArtistRepository = (*MongoArtistRepository)(nil)
