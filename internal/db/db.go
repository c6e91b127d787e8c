package db

import (
	"context"
	"errors"
)

// Entry is one key/value pair of a SetMany batch.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the keyed persistence layer every collection lives in. Each key
// holds one whole serialized collection.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes every entry or none of them.
	SetMany(ctx context.Context, entries []Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrEmptyKey = errors.New("empty key")

func validateEntries(entries []Entry) error {
	for _, e := range entries {
		if e.Key == "" {
			return ErrEmptyKey
		}
	}
	return nil
}
