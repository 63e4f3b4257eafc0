package repository

import (
	"context"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoBookingRepository struct {
	col *mongo.Collection
}

func NewMongoBookingRepository(db *mongo.Database) BookingRepository {
	return &MongoBookingRepository{col: db.Collection(BookingsCollection)}
}

func (r *MongoBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, b)
	return mongoError(err)
}

func (r *MongoBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, mongoError(err)
	}
	return &b, nil
}

func (r *MongoBookingRepository) ListByPurchaser(ctx context.Context, purchaserID string) ([]domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": purchaserID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Booking](ctx, cursor)
}

func (r *MongoBookingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoBookingRepository) BookedQuantities(ctx context.Context, eventID string) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		{{Key: "$unwind", Value: "$tickets"}},
		{{Key: "$group", Value: bson.M{"_id": "$tickets.ticket_type", "quantity": bson.M{"$sum": "$tickets.quantity"}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	type row struct {
		Category string `bson:"_id"`
		Quantity int    `bson:"quantity"`
	}
	rows, err := decodeAll[row](ctx, cursor)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]int, len(rows))
	for _, r := range rows {
		booked[r.Category] = r.Quantity
	}
	return booked, nil
}

var _ BookingRepository = (*MongoBookingRepository)(nil)
