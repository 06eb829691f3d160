// Package boltdb provides a brapi2isa.AccessionCache backed by a boltdb file,
// for studies whose germplasm lists are too large to hold comfortably in
// memory.
package boltdb

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
)

var accessionBucket = []byte("accessions")

var _ brapi2isa.AccessionCache = &Cache{}

// Cache is a brapi2isa.AccessionCache which stores the germplasm id to
// accession number mapping in boltdb.
type Cache struct {
	Db *bolt.DB
}

// NewCache opens (creating if needed) the boltdb file at filename.
func NewCache(filename string) (c *Cache, err error) {
	c = &Cache{}
	c.Db, err = bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second, NoGrowSync: true})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	c.Db.MaxBatchDelay = 400 * time.Microsecond
	err = c.Db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accessionBucket)
		return errors.Wrap(err, "creating accessions bucket")
	})
	if err != nil {
		c.Db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return c, nil
}

// Get implements brapi2isa.AccessionLookup.
func (c *Cache) Get(germplasmID string) (acc string, ok bool, err error) {
	err = c.Db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(accessionBucket).Get([]byte(germplasmID))
		if val != nil {
			acc, ok = string(val), true
		}
		return nil
	})
	if err != nil {
		return "", false, errors.Wrapf(err, "looking up germplasm %s", germplasmID)
	}
	return acc, ok, nil
}

// Put implements brapi2isa.AccessionCache. The first accession stored for a
// germplasm is kept.
func (c *Cache) Put(germplasmID, accession string) (stored bool, err error) {
	err = c.Db.Batch(func(tx *bolt.Tx) error {
		b := tx.Bucket(accessionBucket)
		key := []byte(germplasmID)
		if b.Get(key) != nil {
			stored = false
			return nil
		}
		stored = true
		return errors.Wrap(b.Put(key, []byte(accession)), "inserting into accessions bucket")
	})
	if err != nil {
		return false, err
	}
	return stored, nil
}

// Close syncs and closes the underlying boltdb.
func (c *Cache) Close() error {
	err := c.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return c.Db.Close()
}
