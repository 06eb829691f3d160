// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package leveldb

import (
	"hash/fnv"
	"os"
	"sync"

	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var _ brapi2isa.AccessionCache = &Cache{}

// Cache is a brapi2isa.AccessionCache which stores the germplasm id to
// accession number mapping in leveldb.
type Cache struct {
	lock valueLocker
	db   *leveldb.DB
}

// NewCache opens (creating if needed) a leveldb in dirname.
func NewCache(dirname string) (*Cache, error) {
	err := os.MkdirAll(dirname, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	c := &Cache{lock: newBucketVLock()}
	c.db, err = leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", dirname)
	}
	return c, nil
}

// Get implements brapi2isa.AccessionLookup.
func (c *Cache) Get(germplasmID string) (string, bool, error) {
	data, err := c.db.Get([]byte(germplasmID), &opt.ReadOptions{})
	if err == leveldb.ErrNotFound {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrap(err, "reading accession map")
	}
	return string(data), true, nil
}

// Put implements brapi2isa.AccessionCache. The first accession stored for a
// germplasm is kept.
func (c *Cache) Put(germplasmID, accession string) (bool, error) {
	key := []byte(germplasmID)
	c.lock.Lock(key)
	defer c.lock.Unlock(key)
	ok, err := c.db.Has(key, &opt.ReadOptions{})
	if err != nil {
		return false, errors.Wrap(err, "reading accession map")
	} else if ok {
		return false, nil
	}
	err = c.db.Put(key, []byte(accession), &opt.WriteOptions{})
	if err != nil {
		return false, errors.Wrap(err, "putting accession")
	}
	return true, nil
}

// Close closes the underlying leveldb.
func (c *Cache) Close() error {
	return errors.Wrap(c.db.Close(), "closing leveldb")
}

type valueLocker interface {
	Lock(val []byte)
	Unlock(val []byte)
}

// bucketVLock serializes writers of the same key without a global lock.
type bucketVLock struct {
	ms []sync.Mutex
}

func newBucketVLock() bucketVLock {
	return bucketVLock{
		ms: make([]sync.Mutex, 1000),
	}
}

func (b bucketVLock) Lock(val []byte) {
	hsh := fnv.New32a()
	hsh.Write(val) // never returns error for hash
	b.ms[hsh.Sum32()%1000].Lock()
}

func (b bucketVLock) Unlock(val []byte) {
	hsh := fnv.New32a()
	hsh.Write(val) // never returns error for hash
	b.ms[hsh.Sum32()%1000].Unlock()
}
