package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

// BadgerCache stores JSON-encoded plans in an embedded Badger database.
type BadgerCache[P any] struct {
	db     *badger.DB
	prefix string
	ttl    time.Duration
}

var _ ports.RouteCache[struct{}] = (*BadgerCache[struct{}])(nil)

// OpenBadger opens a Badger database at path. An empty path keeps it in memory.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// NewBadger constructs a Badger-backed cache. A zero ttl keeps entries forever.
func NewBadger[P any](db *badger.DB, prefix string, ttl time.Duration) *BadgerCache[P] {
	return &BadgerCache[P]{db: db, prefix: prefix, ttl: ttl}
}

func (c *BadgerCache[P]) Get(_ context.Context, key ports.RouteCacheKey) (P, bool, error) {
	var (
		plan      P
		found     bool
		decodeErr error
	)
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(c.prefix + key.String()))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			decodeErr = json.Unmarshal(val, &plan)
			return nil
		})
	})
	if err != nil {
		return plan, false, ports.NewRouteCacheBackendError(err)
	}
	if decodeErr != nil {
		return plan, false, ports.NewRouteCacheSerializationError(decodeErr)
	}
	return plan, found, nil
}

func (c *BadgerCache[P]) Put(_ context.Context, key ports.RouteCacheKey, plan P) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return ports.NewRouteCacheSerializationError(err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(c.prefix+key.String()), raw)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return ports.NewRouteCacheBackendError(err)
	}
	return nil
}
