package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store is a BoltDB-backed document store. Each collection maps to a
// bucket of JSON documents keyed by id; unique indexes live in side
// buckets and are maintained in the same write transaction as the
// documents they cover, so index checks cannot race with inserts.
type Store struct {
	db      *bolt.DB
	codec   IDCodec
	indexes map[string][]string
}

// Open initializes the BoltDB file under path.
func Open(path string, codec IDCodec) (*Store, error) {
	if codec == nil {
		codec = UUIDCodec{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &Store{
		db:      db,
		codec:   codec,
		indexes: make(map[string][]string),
	}, nil
}

// Codec exposes the identifier codec used by this store.
func (s *Store) Codec() IDCodec {
	return s.codec
}

// EnsureUniqueIndex declares field as unique within collection and
// creates the backing index bucket. Must be called before the first
// write to the collection.
func (s *Store) EnsureUniqueIndex(collection, field string) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(indexBucket(collection, field))
		return err
	}); err != nil {
		return err
	}
	s.indexes[collection] = append(s.indexes[collection], field)
	return nil
}

// InsertOne stores doc and returns its assigned id. An existing "_id"
// field is honored, otherwise one is minted via the codec.
func (s *Store) InsertOne(ctx context.Context, collection string, doc Document) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}

	id, _ := doc[IDField].(string)
	if id == "" {
		id = s.codec.NewID()
	}
	stored := cloneDocument(doc)
	stored[IDField] = id

	payload, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(collectionBucket(collection))
		if err != nil {
			return err
		}
		if bucket.Get([]byte(id)) != nil {
			return ErrDuplicateKey
		}
		if err := s.claimIndexEntries(tx, collection, id, stored); err != nil {
			return err
		}
		return bucket.Put([]byte(id), payload)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// FindOne returns the first document matching filter.
func (s *Store) FindOne(ctx context.Context, collection string, filter map[string]any) (Document, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var found Document
	err := s.db.View(func(tx *bolt.Tx) error {
		doc, err := findInTx(tx, collection, filter)
		if err != nil {
			return err
		}
		found = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindMany returns up to limit documents matching filter. Iteration order
// follows the bucket's key order and is not meaningful to callers.
func (s *Store) FindMany(ctx context.Context, collection string, filter map[string]any, limit int) ([]Document, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	var docs []Document
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(collectionBucket(collection))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil && len(docs) < limit; k, v = c.Next() {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				continue
			}
			if matches(doc, filter) {
				docs = append(docs, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateOne applies patch to the first document matching filter. Patch
// values replace document fields; the id is never patchable.
func (s *Store) UpdateOne(ctx context.Context, collection string, filter, patch map[string]any) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		doc, err := findInTx(tx, collection, filter)
		if err != nil {
			return err
		}
		id, _ := doc[IDField].(string)

		if err := s.releaseIndexEntries(tx, collection, doc); err != nil {
			return err
		}
		for key, value := range patch {
			if key == IDField {
				continue
			}
			doc[key] = value
		}
		if err := s.claimIndexEntries(tx, collection, id, doc); err != nil {
			return err
		}

		payload, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return tx.Bucket(collectionBucket(collection)).Put([]byte(id), payload)
	})
}

// DeleteOne removes the first document matching filter.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter map[string]any) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		doc, err := findInTx(tx, collection, filter)
		if err != nil {
			return err
		}
		id, _ := doc[IDField].(string)
		if err := s.releaseIndexEntries(tx, collection, doc); err != nil {
			return err
		}
		return tx.Bucket(collectionBucket(collection)).Delete([]byte(id))
	})
}

// Count returns the number of documents in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket(collectionBucket(collection)); bucket != nil {
			count = bucket.Stats().KeyN
		}
		return nil
	})
	return count, err
}

// Ping verifies the database is open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

// Snapshot writes a consistent copy of the database to path using a
// read transaction, suitable for hot backups.
func (s *Store) Snapshot(ctx context.Context, path string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		if _, err := tx.WriteTo(file); err != nil {
			return err
		}
		return file.Sync()
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

func (s *Store) ready(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) claimIndexEntries(tx *bolt.Tx, collection, id string, doc Document) error {
	for _, field := range s.indexes[collection] {
		value, ok := doc[field].(string)
		if !ok || value == "" {
			continue
		}
		bucket := tx.Bucket(indexBucket(collection, field))
		if bucket == nil {
			continue
		}
		if existing := bucket.Get([]byte(value)); existing != nil && string(existing) != id {
			return ErrDuplicateKey
		}
		if err := bucket.Put([]byte(value), []byte(id)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) releaseIndexEntries(tx *bolt.Tx, collection string, doc Document) error {
	for _, field := range s.indexes[collection] {
		value, ok := doc[field].(string)
		if !ok || value == "" {
			continue
		}
		bucket := tx.Bucket(indexBucket(collection, field))
		if bucket == nil {
			continue
		}
		if err := bucket.Delete([]byte(value)); err != nil {
			return err
		}
	}
	return nil
}

func findInTx(tx *bolt.Tx, collection string, filter map[string]any) (Document, error) {
	bucket := tx.Bucket(collectionBucket(collection))
	if bucket == nil {
		return nil, ErrNoDocuments
	}

	// Filtering by id alone is a direct lookup.
	if id, ok := filter[IDField].(string); ok && len(filter) == 1 {
		payload := bucket.Get([]byte(id))
		if payload == nil {
			return nil, ErrNoDocuments
		}
		var doc Document
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	c := bucket.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var doc Document
		if err := json.Unmarshal(v, &doc); err != nil {
			continue
		}
		if matches(doc, filter) {
			return doc, nil
		}
	}
	return nil, ErrNoDocuments
}

func matches(doc Document, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := doc[key]
		if !ok || !reflect.DeepEqual(normalize(want), got) {
			return false
		}
	}
	return true
}

// normalize round-trips a filter value through JSON so it compares equal
// to the decoded form of stored documents (e.g. ints become float64).
func normalize(value any) any {
	switch value.(type) {
	case nil, string, bool, float64:
		return value
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return value
	}
	return decoded
}

func cloneDocument(doc Document) Document {
	cloned := make(Document, len(doc)+1)
	for key, value := range doc {
		cloned[key] = value
	}
	return cloned
}

func collectionBucket(collection string) []byte {
	return []byte("col." + collection)
}

func indexBucket(collection, field string) []byte {
	return []byte(fmt.Sprintf("idx.%s.%s", collection, field))
}
