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

package brapi2isa

import (
	"sync"
)

// AccessionLookup resolves a germplasm id to its accession number.
type AccessionLookup interface {
	Get(germplasmID string) (accession string, ok bool, err error)
}

// AccessionCache stores germplasm accession numbers for the duration of a
// study. Put keeps the first accession stored for an id and reports whether
// the given one was stored. Implementations should be threadsafe.
type AccessionCache interface {
	AccessionLookup
	Put(germplasmID, accession string) (stored bool, err error)
	Close() error
}

// MapCache is an in-memory AccessionCache.
type MapCache struct {
	lock sync.RWMutex
	m    map[string]string
}

// NewMapCache creates a new MapCache.
func NewMapCache() *MapCache {
	return &MapCache{
		m: make(map[string]string),
	}
}

// Get implements AccessionLookup.
func (c *MapCache) Get(germplasmID string) (string, bool, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	acc, ok := c.m[germplasmID]
	return acc, ok, nil
}

// Put implements AccessionCache.
func (c *MapCache) Put(germplasmID, accession string) (bool, error) {
	c.lock.RLock()
	if _, ok := c.m[germplasmID]; ok {
		c.lock.RUnlock()
		return false, nil
	}
	c.lock.RUnlock()
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.m[germplasmID]; ok {
		return false, nil
	}
	c.m[germplasmID] = accession
	return true, nil
}

// Close implements AccessionCache. It does nothing.
func (c *MapCache) Close() error { return nil }
