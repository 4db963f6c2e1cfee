package mongodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"triage_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Key-Value Adapter
// =============================================================================

const (
	collectionKV = "triage_kv"

	// Values above this size are stored gzip-compressed.
	compressionThreshold = 4096
)

// kvDocument is one stored key.
type kvDocument struct {
	Key          string    `bson:"_id"`
	Value        []byte    `bson:"value"`
	IsCompressed bool      `bson:"is_compressed"`
	OriginalSize int64     `bson:"original_size"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// KVAdapter implements out.KeyValueStore on a MongoDB collection.
type KVAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

var _ out.KeyValueStore = (*KVAdapter)(nil)

func NewKVAdapter(db *mongo.Database) *KVAdapter {
	return &KVAdapter{db: db, collection: db.Collection(collectionKV)}
}

func (a *KVAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc kvDocument
	err := a.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !doc.IsCompressed {
		return doc.Value, true, nil
	}
	value, err := decompress(doc.Value)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress %s: %w", key, err)
	}
	return value, true, nil
}

func (a *KVAdapter) Set(ctx context.Context, key string, value []byte) error {
	doc := kvDocument{
		Key:          key,
		Value:        value,
		OriginalSize: int64(len(value)),
		UpdatedAt:    time.Now().UTC(),
	}
	if len(value) > compressionThreshold {
		compressed, err := compress(value)
		if err != nil {
			return fmt.Errorf("failed to compress %s: %w", key, err)
		}
		doc.Value = compressed
		doc.IsCompressed = true
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := a.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (a *KVAdapter) Delete(ctx context.Context, key string) error {
	_, err := a.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (a *KVAdapter) Ping(ctx context.Context) error {
	return a.db.Client().Ping(ctx, nil)
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
