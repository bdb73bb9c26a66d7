package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CountersCollection holds one sequence document per entity collection.
const CountersCollection = "counters"

// MongoRepo implements Repository on a MongoDB collection. Records use the
// sequential integer id as _id; the next value comes from an atomic $inc on
// the counters collection, so ids keep growing across deletes and restarts.
type MongoRepo[T any, PT Record[T]] struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

// NewMongoRepo returns a repository over col. The counter document is keyed
// by the collection name.
func NewMongoRepo[T any, PT Record[T]](col *mongo.Collection) *MongoRepo[T, PT] {
	return &MongoRepo[T, PT]{
		col:      col,
		counters: col.Database().Collection(CountersCollection),
	}
}

func (m *MongoRepo[T, PT]) nextID(ctx context.Context) (int, error) {
	var seq struct {
		Seq int `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": m.col.Name()},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", m.col.Name(), err)
	}
	return seq.Seq, nil
}

func (m *MongoRepo[T, PT]) Create(ctx context.Context, rec *T) (*T, error) {
	id, err := m.nextID(ctx)
	if err != nil {
		return nil, err
	}
	v := *rec
	PT(&v).SetID(id)
	if _, err := m.col.InsertOne(ctx, &v); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", m.col.Name(), err)
	}
	return &v, nil
}

func (m *MongoRepo[T, PT]) Get(ctx context.Context, id int) (*T, error) {
	var v T
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (m *MongoRepo[T, PT]) List(ctx context.Context) ([]*T, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// Update is a read-modify-replace; the replace is conditioned on _id so a
// concurrent delete surfaces as ErrNotFound instead of resurrecting the record.
func (m *MongoRepo[T, PT]) Update(ctx context.Context, id int, mutate func(*T)) (*T, error) {
	v, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	mutate(v)
	PT(v).SetID(id)
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": id}, v)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *MongoRepo[T, PT]) Delete(ctx context.Context, id int) (bool, error) {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m *MongoRepo[T, PT]) Truncate(ctx context.Context) error {
	if _, err := m.col.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	_, err := m.counters.DeleteOne(ctx, bson.M{"_id": m.col.Name()})
	return err
}
