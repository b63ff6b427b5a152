package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// Ensure Cache implements fieldscrape.Cache.
var _ fieldscrape.Cache = (*Cache)(nil)

// Cache stores namespaced entries in a single SQLite table.
type Cache struct {
	db *DB
}

// NewCache creates a new Cache backed by an open DB.
func NewCache(db *DB) *Cache {
	return &Cache{db: db}
}

// Put stores value under key in ns, replacing any existing value.
func (c *Cache) Put(ctx context.Context, ns fieldscrape.Namespace, key string, value []byte) error {
	if err := ns.Validate(); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return fieldscrape.WrapError(fieldscrape.ECACHE, err, "acquire connection")
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, `
		INSERT INTO entries (namespace, key, value, stored_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = excluded.value,
			stored_at = excluded.stored_at
	`, string(ns), key, value, time.Now().UTC().Format(time.RFC3339Nano))
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

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "acquire connection")
	}
	defer conn.Close()

	var value []byte
	err = conn.QueryRowContext(ctx,
		`SELECT value FROM entries WHERE namespace = ? AND key = ?`,
		string(ns), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
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

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
