package repository

import (
	"context"
	"fmt"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoNewsRepository struct {
	col *mongo.Collection
}

func NewMongoNewsRepository(db *mongo.Database) NewsRepository {
	return &MongoNewsRepository{col: db.Collection(NewsCollection)}
}

func (r *MongoNewsRepository) List(ctx context.Context, filter NewsFilter) ([]domain.News, error) {
	q := bson.M{}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if filter.ArtistIDs != nil {
		q["artist_id"] = bson.M{"$in": filter.ArtistIDs}
	}
	opts := options.Find().SetSort(bson.D{{Key: "publish_date", Value: -1}})
	cursor, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.News](ctx, cursor)
}

func (r *MongoNewsRepository) GetByID(ctx context.Context, id string) (*domain.News, error) {
	var n domain.News
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return nil, mongoError(err)
	}
	return &n, nil
}

func (r *MongoNewsRepository) Create(ctx context.Context, n *domain.News) error {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	_, err := r.col.InsertOne(ctx, n)
	return mongoError(err)
}

func (r *MongoNewsRepository) IncrementShare(ctx context.Context, id, platform string) (*domain.News, error) {
	if !SharePlatforms[platform] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	var n domain.News
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"social_shares." + platform: 1}},
		opts).Decode(&n)
	if err != nil {
		return nil, mongoError(err)
	}
	return &n, nil
}

var _ NewsRepository = (*MongoNewsRepository)(nil)
