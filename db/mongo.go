package db

import (
	"context"
	"fmt"
	"time"

	"flight-analysis/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists analysis records in a MongoDB collection. Alternate
// backend to SQLiteStore, selected via DB_TYPE.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the analyses collection.
func NewMongoStore(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %s", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error pinging MongoDB: %s", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection("analyses"),
	}, nil
}

// SaveAnalysis inserts one record. The returned id is the record timestamp
// in nanoseconds, mirroring the SQLite id semantics closely enough for the
// service layer.
func (s *MongoStore) SaveAnalysis(record *models.AnalysisRecord) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if record.ID == 0 {
		record.ID = record.Timestamp.UnixNano()
	}
	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		return 0, fmt.Errorf("error inserting analysis: %s", err)
	}
	return record.ID, nil
}

// RecentAnalyses returns the newest records, newest first.
func (s *MongoStore) RecentAnalyses(limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %s", err)
	}
	defer cursor.Close(ctx)

	var records []models.AnalysisRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding analyses: %s", err)
	}
	return records, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
