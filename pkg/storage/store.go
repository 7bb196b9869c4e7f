// Package storage persists self-play game records for training.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/herohde/xiangzero/pkg/search"
	"github.com/seekerror/logw"
)

const gamePrefix = "game/"

// Record is one completed self-play game: per-decision training samples plus
// the outcome from the first mover's perspective.
type Record struct {
	Steps   int             `json:"steps"`
	Outcome int             `json:"outcome"`
	Samples []search.Sample `json:"samples"`
}

// Store is a BadgerDB-backed store of game records, keyed by a monotonic
// sequence so that old games can be pruned in insertion order.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens (or creates) a store in the given directory.
func Open(ctx context.Context, dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store in %v: %w", dir, err)
	}
	seq, err := db.GetSequence([]byte("seq/game"), 64)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open game sequence: %w", err)
	}

	logw.Infof(ctx, "Opened game store in %v", dir)
	return &Store{db: db, seq: seq}, nil
}

// Put appends a game record.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	n, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to allocate game id: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}

	key := fmt.Sprintf("%v%016d", gamePrefix, n)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Games invokes fn for each stored game record, in insertion order. A non-nil
// error from fn stops the iteration.
func (s *Store) Games(ctx context.Context, fn func(*Record) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(data []byte) error {
				var rec Record
				if err := json.Unmarshal(data, &rec); err != nil {
					return fmt.Errorf("failed to decode game %s: %w", it.Item().Key(), err)
				}
				return fn(&rec)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored games.
func (s *Store) Count(ctx context.Context) (int, error) {
	var ret int
	err := s.Games(ctx, func(*Record) error {
		ret++
		return nil
	})
	return ret, err
}

// Close releases the sequence and closes the database.
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		return err
	}
	return s.db.Close()
}
