// Package badger provides a Badger-backed fieldscrape.Cache.
package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fwojciec/fieldscrape"
)

// Ensure Cache implements fieldscrape.Cache.
var _ fieldscrape.Cache = (*Cache)(nil)

// Cache stores entries in a Badger database. Every call runs in its own
// transaction.
type Cache struct {
	db *badger.DB
}

// Open opens or creates the database directory at path.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	if path == ":memory:" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "open badger %s", path)
	}
	return &Cache{db: db}, nil
}

// Put stores value under key in ns, replacing any existing value.
func (c *Cache) Put(ctx context.Context, ns fieldscrape.Namespace, key string, value []byte) error {
	if err := ns.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fieldscrape.WrapError(fieldscrape.ECACHE, err, "put %s/%s", ns, key)
	}
	if value == nil {
		value = []byte{}
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(ns, key), value)
	})
	if err != nil {
		return fieldscrape.WrapError(fieldscrape.ECACHE, err, "put %s/%s", ns, key)
	}
	return nil
}

// Get returns the value stored under key in ns.
func (c *Cache) Get(ctx context.Context, ns fieldscrape.Namespace, key string) ([]byte, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "get %s/%s", ns, key)
	}

	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(ns, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fieldscrape.Errorf(fieldscrape.ENOTFOUND, "no entry for key %q in %s", key, ns)
	}
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "get %s/%s", ns, key)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func entryKey(ns fieldscrape.Namespace, key string) []byte {
	return []byte(string(ns) + ":" + key)
}
