package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository is the store surface used by the ingest and listing routes
type SessionRepository interface {
	Insert(ctx context.Context, doc bson.M) (interface{}, error)
	List(ctx context.Context, limit, skip int64) ([]bson.M, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// Pinger is satisfied by *database.MongoDB
type Pinger interface {
	Ping(ctx context.Context) error
}

// MongoSessionStore handles MongoDB access for experiment session documents
type MongoSessionStore struct {
	collection *mongo.Collection
	pinger     Pinger
	now        func() time.Time
}

// NewMongoSessionStore creates a store over collection. pinger may be nil, in
// which case Ping issues a cheap count on the collection instead.
func NewMongoSessionStore(collection *mongo.Collection, pinger Pinger) *MongoSessionStore {
	return &MongoSessionStore{
		collection: collection,
		pinger:     pinger,
		now:        time.Now,
	}
}

// FindFirst returns the first document matching any clause of query
func (s *MongoSessionStore) FindFirst(ctx context.Context, query LookupQuery) (bson.M, bool, error) {
	var doc bson.M
	err := s.collection.FindOne(ctx, query.Filter()).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find session: %w", err)
	}
	return doc, true, nil
}

// Insert stores doc as-is, stamping createdAt with the server time
func (s *MongoSessionStore) Insert(ctx context.Context, doc bson.M) (interface{}, error) {
	if doc == nil {
		doc = bson.M{}
	}
	doc["createdAt"] = s.now().UTC()

	result, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return result.InsertedID, nil
}

// List returns raw documents, newest first
func (s *MongoSessionStore) List(ctx context.Context, limit, skip int64) ([]bson.M, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return docs, nil
}

// Count returns the number of stored session documents
func (s *MongoSessionStore) Count(ctx context.Context) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// Ping checks store reachability
func (s *MongoSessionStore) Ping(ctx context.Context) error {
	if s.pinger != nil {
		return s.pinger.Ping(ctx)
	}
	_, err := s.collection.EstimatedDocumentCount(ctx)
	return err
}
