package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo maps collections one-to-one onto MongoDB collections. IDs live in _id.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zerolog.Logger
}

func NewMongo(ctx context.Context, uri, database string, log *zerolog.Logger) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Str("database", database).Msg("MongoDB connected")
	return &Mongo{client: client, db: client.Database(database), log: log}, nil
}

func (m *Mongo) Insert(ctx context.Context, collection string, doc any) (string, error) {
	fields, err := toBSON(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	fields["_id"] = id

	if _, err := m.db.Collection(collection).InsertOne(ctx, fields); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

func (m *Mongo) Set(ctx context.Context, collection, id string, doc any) error {
	fields, err := toBSON(doc)
	if err != nil {
		return err
	}
	fields["_id"] = id

	_, err = m.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, fields, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) QueryWhere(ctx context.Context, collection, field string, value any, out any) error {
	cur, err := m.db.Collection(collection).Find(ctx, bson.M{field: value})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) ListAll(ctx context.Context, collection, orderBy string, dir Direction, out any) error {
	if !validField(orderBy) {
		return ErrInvalidField
	}
	order := 1
	if dir == Desc {
		order = -1
	}

	opts := options.Find().SetSort(bson.D{{Key: orderBy, Value: order}})
	cur, err := m.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) GetByID(ctx context.Context, collection, id string, out any) error {
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toBSON(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return fields, nil
}
