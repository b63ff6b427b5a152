// Package leveldb provides a LevelDB-backed fieldscrape.Cache.
//
// Namespaces are kept apart by prefixing every key with "<namespace>:".
package leveldb

import (
	"context"
	"errors"

	"github.com/fwojciec/fieldscrape"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// Ensure Cache implements fieldscrape.Cache.
var _ fieldscrape.Cache = (*Cache)(nil)

// Cache stores entries in a LevelDB database.
type Cache struct {
	db *leveldb.DB
}

// Open opens or creates the database directory at path.
// Use ":memory:" for a database that lives only as long as the process.
func Open(path string) (*Cache, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == ":memory:" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "open leveldb %s", path)
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
	if err := c.db.Put(entryKey(ns, key), value, nil); err != nil {
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
	b, err := c.db.Get(entryKey(ns, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fieldscrape.Errorf(fieldscrape.ENOTFOUND, "no entry for key %q in %s", key, ns)
	}
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "get %s/%s", ns, key)
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func entryKey(ns fieldscrape.Namespace, key string) []byte {
	return []byte(string(ns) + ":" + key)
}
