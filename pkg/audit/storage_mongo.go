package audit

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultMongoCollection is the collection used when none is given.
const DefaultMongoCollection = "audit_events"

// MongoStorage stores events as documents in a MongoDB collection.
type MongoStorage struct {
	coll *mongo.Collection
}

func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStorage{coll: db.Collection(collection)}
}

// EnsureIndexes creates the indexes used by Query and Prune.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "resource_id", Value: 1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (s *MongoStorage) Store(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]any, len(events))
	for i, e := range events {
		docs[i] = e
	}
	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrStorageNotAvailable, err)
	}
	return nil
}

func (s *MongoStorage) Query(ctx context.Context, c Criteria) ([]Event, error) {
	c = c.Normalize()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(c.Limit)).
		SetSkip(int64(c.Offset))

	cur, err := s.coll.Find(ctx, mongoFilter(c), opts)
	if err != nil {
		return nil, errors.Join(ErrStorageNotAvailable, err)
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *MongoStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, errors.Join(ErrStorageNotAvailable, err)
	}
	return res.DeletedCount, nil
}

func mongoFilter(c Criteria) bson.M {
	filter := bson.M{}
	if c.Action != "" {
		filter["action"] = c.Action
	}
	if c.Resource != "" {
		filter["resource"] = c.Resource
	}
	if c.ResourceID != "" {
		filter["resource_id"] = c.ResourceID
	}
	if c.ActorID != "" {
		filter["actor_id"] = c.ActorID
	}
	if c.Result != "" {
		filter["result"] = string(c.Result)
	}
	created := bson.M{}
	if !c.Since.IsZero() {
		created["$gte"] = c.Since
	}
	if !c.Until.IsZero() {
		created["$lt"] = c.Until
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}
	return filter
}
