package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/negga-dot/LaunchMate/internal/domain"
)

const subscribersCollection = "subscribers"

// MongoClient wraps a mongo.Client bound to one database.
type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo connects to MongoDB, verifies the connection with a ping and
// selects database.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoClient, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	return &MongoClient{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the unique email index the subscriber store relies on.
func (c *MongoClient) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("ux_subscribers_email"),
	}
	if _, err := c.db.Collection(subscribersCollection).Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create subscribers index: %w", err)
	}
	return nil
}

// Subscribers returns the subscriber store backed by this client.
func (c *MongoClient) Subscribers() *MongoSubscribers {
	return NewMongoSubscribers(c.db.Collection(subscribersCollection))
}

// Close disconnects from MongoDB.
func (c *MongoClient) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// MongoSubscribers stores subscribers in a MongoDB collection. It returns the
// same sentinels as the GORM functions (ErrNotFound, ErrDuplicate).
type MongoSubscribers struct {
	coll *mongo.Collection
}

// NewMongoSubscribers returns a store over coll.
func NewMongoSubscribers(coll *mongo.Collection) *MongoSubscribers {
	return &MongoSubscribers{coll: coll}
}

// Create inserts s; a duplicate email yields ErrDuplicate.
func (m *MongoSubscribers) Create(ctx context.Context, s *domain.Subscriber) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = time.Now().UTC()
	}
	if _, err := m.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByEmail looks up a subscriber by stored email.
func (m *MongoSubscribers) FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	return m.findOne(ctx, bson.M{"email": email})
}

// FindByID looks up a subscriber by ID.
func (m *MongoSubscribers) FindByID(ctx context.Context, id string) (*domain.Subscriber, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

// Delete removes a subscriber by ID.
func (m *MongoSubscribers) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of subscribers.
func (m *MongoSubscribers) Count(ctx context.Context) (int64, error) {
	return m.coll.CountDocuments(ctx, bson.M{})
}

func (m *MongoSubscribers) findOne(ctx context.Context, filter bson.M) (*domain.Subscriber, error) {
	var s domain.Subscriber
	if err := m.coll.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
