// Package rawstore buffers raw extracted records in MongoDB between the
// extract and transform stages. The buffer holds exactly one batch at a time:
// each run clears it and inserts the fresh extraction, so reruns of the
// downstream stages always see the latest source snapshot.
package rawstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/zeebo/xxh3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/esscova/ecommerce-data-pipeline/pkg/records"
)

// RawBuffer is the seam the pipeline depends on; Store is the Mongo-backed
// implementation and tests substitute fakes.
type RawBuffer interface {
	InsertBatch(ctx context.Context, batch []records.Record) error
	FetchAll(ctx context.Context) ([]records.Record, error)
	Clear(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// Config parameterizes the Mongo connection. A zero ConnectTimeout defaults
// to 5s and bounds both server selection and the initial ping.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Store is the MongoDB-backed RawBuffer.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials Mongo and pings it so a dead server fails the run up front
// instead of at the first insert.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("rawstore: mongo uri must not be empty")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("rawstore: database and collection must not be empty")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("rawstore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("rawstore: ping: %w", err)
	}

	log.Printf("rawstore: connected to %s.%s", cfg.Database, cfg.Collection)
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// InsertBatch writes the batch with one insert-many. An empty batch is a
// logged no-op. The batch content fingerprint is logged so a run's raw input
// can be matched across environments.
func (s *Store) InsertBatch(ctx context.Context, batch []records.Record) error {
	if len(batch) == 0 {
		log.Printf("rawstore: empty batch, nothing to insert")
		return nil
	}

	docs := make([]any, len(batch))
	for i, rec := range batch {
		docs[i] = bson.M(rec)
	}

	res, err := s.coll.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("rawstore: insert batch: %w", err)
	}
	log.Printf("rawstore: %d raw documents inserted, batch fingerprint %016x",
		len(res.InsertedIDs), Fingerprint(batch))
	return nil
}

// FetchAll returns every buffered document as a record, with Mongo's own
// "_id" stripped so it never leaks into the canonical schema.
func (s *Store) FetchAll(ctx context.Context) ([]records.Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("rawstore: find: %w", err)
	}
	defer cur.Close(ctx)

	var batch []records.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("rawstore: decode document: %w", err)
		}
		delete(doc, "_id")
		batch = append(batch, records.Record(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("rawstore: cursor: %w", err)
	}

	log.Printf("rawstore: %d raw documents fetched", len(batch))
	return batch, nil
}

// Clear removes every buffered document and reports how many went away.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("rawstore: clear: %w", err)
	}
	log.Printf("rawstore: %d raw documents removed", res.DeletedCount)
	return res.DeletedCount, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("rawstore: disconnect: %w", err)
	}
	return nil
}

// Fingerprint hashes the batch content. Records are serialized through
// encoding/json, which orders map keys, so the fingerprint is stable across
// runs for identical content regardless of key insertion order.
func Fingerprint(batch []records.Record) uint64 {
	h := xxh3.New()
	for _, rec := range batch {
		b, err := json.Marshal(rec)
		if err != nil {
			// Unserializable values cannot occur in decoded JSON batches;
			// fall back to the record's fmt rendering.
			b = []byte(fmt.Sprint(rec))
		}
		_, _ = h.Write(b)
		_, _ = h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
