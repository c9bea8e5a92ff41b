// Package docstore provides a small document store over BoltDB. Records
// are schemaless JSON documents grouped into collections and addressed by
// equality filters, which is all the repositories above it need.
package docstore

import (
	"errors"

	"github.com/google/uuid"
)

// Document is a schemaless record. The store keys every document by its
// "_id" field.
type Document = map[string]any

// IDField is the reserved document key holding the store-assigned id.
const IDField = "_id"

var (
	// ErrNoDocuments is returned when no document matches a filter.
	ErrNoDocuments = errors.New("docstore: no documents in result")
	// ErrDuplicateKey is returned when an insert or update violates a
	// unique index.
	ErrDuplicateKey = errors.New("docstore: duplicate key")
	// ErrClosed is returned when the underlying database is not open.
	ErrClosed = errors.New("docstore: store closed")
)

// IDCodec abstracts the store's native identifier format so callers can
// validate externally supplied ids without hardcoding a representation.
type IDCodec interface {
	// NewID mints a fresh identifier.
	NewID() string
	// Parse validates raw and returns it in canonical form.
	Parse(raw string) (string, error)
}

// UUIDCodec implements IDCodec with UUID v4 identifiers.
type UUIDCodec struct{}

func (UUIDCodec) NewID() string {
	return uuid.NewString()
}

func (UUIDCodec) Parse(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
