package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoEventRepository struct {
	col *mongo.Collection
}

func NewMongoEventRepository(db *mongo.Database) EventRepository {
	return &MongoEventRepository{col: db.Collection(EventsCollection)}
}

func eventListFilter(filter EventFilter) bson.M {
	q := bson.M{}
	if filter.ArtistID != "" {
		q["artist_id"] = filter.ArtistID
	}
	if filter.City != "" {
		q["venue.city"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.City) + "$", Options: "i"}
	}
	if !filter.From.IsZero() {
		q["date"] = bson.M{"$gte": filter.From}
	}
	return q
}

func (r *MongoEventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.col.Find(ctx, eventListFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Event](ctx, cursor)
}

func (r *MongoEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var e domain.Event
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, mongoError(err)
	}
	return &e, nil
}

func (r *MongoEventRepository) Create(ctx context.Context, e *domain.Event) error {
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Version == 0 {
		e.Version = 1
	}
	_, err := r.col.InsertOne(ctx, e)
	return mongoError(err)
}

func (r *MongoEventRepository) UpdateDetails(ctx context.Context, e *domain.Event) error {
	now := time.Now().UTC()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": e.ID, "version": e.Version},
		bson.M{
			"$set": bson.M{
				"name":       e.Name,
				"date":       e.Date,
				"artist_id":  e.ArtistID,
				"venue":      e.Venue,
				"updated_at": now,
			},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, e.ID)
	}
	e.Version++
	e.UpdatedAt = now
	return nil
}

func (r *MongoEventRepository) UpdateInventory(ctx context.Context, id string, expectedVersion int64, categories []domain.TicketCategory) (int64, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{
			"$set": bson.M{"ticket_types": categories, "updated_at": time.Now().UTC()},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, r.missOrConflict(ctx, id)
	}
	return expectedVersion + 1, nil
}

func (r *MongoEventRepository) missOrConflict(ctx context.Context, id string) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *MongoEventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoEventRepository) Nearby(ctx context.Context, lng, lat, maxMeters float64) ([]domain.Event, error) {
	filter := bson.M{
		"venue.location": bson.M{
			"$near": bson.M{
				"$geometry":    bson.M{"type": "Point", "coordinates": bson.A{lng, lat}},
				"$maxDistance": maxMeters,
			},
		},
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Event](ctx, cursor)
}

var _ EventRepository = (*MongoEventRepository)(nil)
