package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionRepository keeps sessions in a collection with a TTL index on
// expiresAt. MongoDB's TTL monitor only runs about once a minute, so reads
// still check the expiry themselves.
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoSessionRepository
func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{collection: db.Collection("sessions")}
}

// EnsureIndexes creates the TTL index that lets MongoDB drop expired sessions.
func (r *MongoSessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("sessions_ttl"),
	})
	return err
}

func (r *MongoSessionRepository) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := r.collection.InsertOne(ctx, session)
	return err
}

func (r *MongoSessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (r *MongoSessionRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteExpired removes sessions the TTL monitor has not reached yet.
func (r *MongoSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
