package config

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocStore holds receipt images and condition photos in MongoDB.
// One client per process, handed to the service layer as a dependency
// rather than reached for through a package global, so tests can swap
// it out.
type DocStore struct {
	db *mongo.Database
}

type storedDocument struct {
	ID          string           `bson:"_id"`
	ContentType string           `bson:"content_type"`
	Data        primitive.Binary `bson:"data"`
	CreatedAt   time.Time        `bson:"created_at"`
}

// ConnectDocStore dials MongoDB using MONGO_URI / MONGO_DB_NAME.
func ConnectDocStore(ctx context.Context) (*DocStore, error) {
	uri := getEnv("MONGO_URI", "mongodb://localhost:27017/")
	dbName := getEnv("MONGO_DB_NAME", "my_garage_docs")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect document store: %w", err)
	}
	return &DocStore{db: client.Database(dbName)}, nil
}

// Put stores a binary blob and returns its generated key.
func (s *DocStore) Put(ctx context.Context, collection string, data []byte, contentType string) (string, error) {
	key := uuid.NewString()
	doc := storedDocument{
		ID:          key,
		ContentType: contentType,
		Data:        primitive.Binary{Data: data},
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("store document in %s: %w", collection, err)
	}
	return key, nil
}

// Get fetches a stored blob by key.
func (s *DocStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	var doc storedDocument
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s from %s: %w", key, collection, err)
	}
	return doc.Data.Data, nil
}
