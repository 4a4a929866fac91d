// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"lexcache/internal/models"
)

const boltFile = "database.db"

var (
	bucketMeta       = []byte("meta")
	bucketCategories = []byte("categories")
	bucketAllPosts   = []byte("allPosts")

	keyLastUpdated = []byte("lastUpdated")
	keyFlatPosts   = []byte("posts")
)

// BoltStore keeps the document in an embedded bbolt database. Each
// category entry is one value in the categories bucket; bbolt's
// single-writer transactions supply the atomic-replace property the file
// backend gets from rename.
type BoltStore struct {
	db   *bbolt.DB
	path string
}

// NewBoltStore opens (creating if needed) the bbolt file under dir.
func NewBoltStore(dir string) (*BoltStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, boltFile)
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketCategories, bucketAllPosts} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &BoltStore{db: db, path: path}, nil
}

// Path returns the bbolt file path.
func (s *BoltStore) Path() string {
	return s.path
}

// Load reads the whole document in one read transaction.
func (s *BoltStore) Load(ctx context.Context) (*models.Database, error) {
	doc := models.NewDatabase()
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(keyLastUpdated); len(v) == 8 {
			doc.LastUpdated = int64(binary.BigEndian.Uint64(v))
		}

		err := tx.Bucket(bucketCategories).ForEach(func(k, v []byte) error {
			var entry models.CategoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode category %s: %w", k, err)
			}
			doc.Categories[string(k)] = entry
			return nil
		})
		if err != nil {
			return err
		}

		if v := tx.Bucket(bucketAllPosts).Get(keyFlatPosts); v != nil {
			if err := json.Unmarshal(v, &doc.AllPosts); err != nil {
				return fmt.Errorf("decode flat posts: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// Save replaces the whole document in one write transaction.
func (s *BoltStore) Save(ctx context.Context, doc *models.Database) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var ts [8]byte
		binary.BigEndian.PutUint64(ts[:], uint64(doc.LastUpdated))
		if err := tx.Bucket(bucketMeta).Put(keyLastUpdated, ts[:]); err != nil {
			return err
		}

		// Drop and rebuild the categories bucket so removed categories
		// do not linger.
		if err := tx.DeleteBucket(bucketCategories); err != nil {
			return err
		}
		cats, err := tx.CreateBucket(bucketCategories)
		if err != nil {
			return err
		}
		for key, entry := range doc.Categories {
			data, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("encode category %s: %w", key, err)
			}
			if err := cats.Put([]byte(key), data); err != nil {
				return err
			}
		}

		flat := tx.Bucket(bucketAllPosts)
		if doc.AllPosts == nil {
			return flat.Delete(keyFlatPosts)
		}
		data, err := json.Marshal(doc.AllPosts)
		if err != nil {
			return fmt.Errorf("encode flat posts: %w", err)
		}
		return flat.Put(keyFlatPosts, data)
	})
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Close closes the bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
