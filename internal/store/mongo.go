package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"biocode/internal/apperrors"
	"biocode/internal/database"
)

// MongoStore persists documents in the "documents" collection, one record
// per (user, key) pair, for deployments that already run MongoDB. The JSON
// value is stored opaquely; the collection schema never changes when the
// domain types do.
type MongoStore struct {
	collection *mongo.Collection
}

type mongoDocument struct {
	Username string `bson:"username"`
	Key      string `bson:"key"`
	Value    []byte `bson:"value"`
}

// NewMongoStore wraps an established MongoDB connection as a Store.
func NewMongoStore(db *database.MongoDB) *MongoStore {
	return &MongoStore{collection: db.Collection(database.CollectionDocuments)}
}

func (s *MongoStore) filter(username, key string) bson.M {
	return bson.M{"username": username, "key": key}
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, username, key string) ([]byte, error) {
	var doc mongoDocument
	err := s.collection.FindOne(ctx, s.filter(username, key)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, apperrors.Storagef("read %s for %s: %v", key, username, err)
	}
	return doc.Value, nil
}

// Set implements Store.
func (s *MongoStore) Set(ctx context.Context, username, key string, value []byte) error {
	update := bson.M{"$set": bson.M{"value": value}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, s.filter(username, key), update, opts); err != nil {
		return apperrors.Storagef("write %s for %s: %v", key, username, err)
	}
	return nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, username, key string) error {
	if _, err := s.collection.DeleteOne(ctx, s.filter(username, key)); err != nil {
		return apperrors.Storagef("delete %s for %s: %v", key, username, err)
	}
	return nil
}
