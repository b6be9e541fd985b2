// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerCache implements the Shared tier on BadgerDB. Expiration is
// delegated to Badger's native entry TTLs, so the janitor only has to
// run value log GC.
type BadgerCache struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Compile-time interface check
var _ Shared = (*BadgerCache)(nil)

// NewBadgerCache opens a Badger-backed shared tier at path. An empty
// path opens an in-memory store, used by tests and single-replica
// deployments that don't need persistence.
func NewBadgerCache(path string, logger zerolog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogAdapter{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	return &BadgerCache{db: db, logger: logger}, nil
}

// Get retrieves the value stored under key.
func (c *BadgerCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key with the given TTL.
func (c *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("badger set %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry stored under key.
func (c *BadgerCache) Delete(ctx context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("badger delete %q: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *BadgerCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	// Collect keys in a read transaction, then delete in batches.
	// Badger transactions have a size ceiling, so deleting while
	// iterating inside one Update is not safe for large prefixes.
	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badger scan prefix %q: %w", prefix, err)
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("badger delete prefix %q: %w", prefix, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("badger flush prefix delete %q: %w", prefix, err)
	}
	return len(keys), nil
}

// RunGC runs one round of Badger value log garbage collection.
// Returns true if a log file was rewritten.
func (c *BadgerCache) RunGC() bool {
	err := c.db.RunValueLogGC(0.5)
	return err == nil
}

// Close closes the underlying Badger database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// badgerLogAdapter routes Badger's internal logging into zerolog.
// Badger's messages arrive newline-terminated.
type badgerLogAdapter struct {
	logger zerolog.Logger
}

func (a badgerLogAdapter) Errorf(format string, args ...interface{}) {
	a.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a badgerLogAdapter) Warningf(format string, args ...interface{}) {
	a.logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a badgerLogAdapter) Infof(format string, args ...interface{}) {
	a.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a badgerLogAdapter) Debugf(format string, args ...interface{}) {
	a.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
