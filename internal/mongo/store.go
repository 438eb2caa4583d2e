package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

const collectionName = "booking_state"

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

type stateDocument struct {
	Key       string             `bson:"_id"`
	Record    appointment.Record `bson:"record"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// Store keeps the record in one document whose _id is the state key.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	key    string
}

func NewStore(client *mongo.Client, database, key string) *Store {
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
		key:    key,
	}
}

func (s *Store) Get(ctx context.Context) (appointment.Record, error) {
	var doc stateDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return appointment.Record{}, appointment.ErrNoRecord
		}
		return appointment.Record{}, fmt.Errorf("find booking state: %w", err)
	}
	return doc.Record, nil
}

func (s *Store) Set(ctx context.Context, rec appointment.Record) error {
	doc := stateDocument{
		Key:       s.key,
		Record:    rec,
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace booking state: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return fmt.Errorf("delete booking state: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}
