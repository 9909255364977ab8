/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */


package graph

import (
	"errors"
	"sync"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/willf/bitset"
)

// DocumentCache caches documents that were parsed and validated for a query string so that repeated
// queries skip both steps. Only valid documents are added.
type DocumentCache interface {
	// Get looks up document for the given query.
	Get(query string) (document *ast.Document, ok bool)

	// Add adds a document that associated with the query to the cache.
	Add(query string, document *ast.Document)
}

// noSlot terminates the recency chain.
const noSlot = -1

// documentSlot is one entry of the fixed-size slot table of LRUDocumentCache. Slots in use form a
// chain ordered by recency through newer and older.
type documentSlot struct {
	query    string
	document *ast.Document
	newer    int
	older    int
}

// LRUDocumentCache is a DocumentCache holding a fixed number of documents. Adding to a full cache
// evicts the least recently used document. It is safe for concurrent use.
type LRUDocumentCache struct {
	mutex sync.Mutex

	// All slots are allocated upfront. Unused ones have their bit set in free.
	slots []documentSlot
	free  *bitset.BitSet

	// Slot by query
	index map[string]int

	// Both ends of the recency chain, noSlot when the cache is empty
	newest int
	oldest int
}

var _ DocumentCache = (*LRUDocumentCache)(nil)

var errZeroCacheSize = errors.New("LRUDocumentCache: must specified a non-zero cache size")

// NewLRUDocumentCache creates a LRUDocumentCache for at most maxEntries documents.
func NewLRUDocumentCache(maxEntries uint) (*LRUDocumentCache, error) {
	if maxEntries == 0 {
		return nil, errZeroCacheSize
	}

	free := bitset.New(maxEntries)
	for i := uint(0); i < maxEntries; i++ {
		free.Set(i)
	}

	return &LRUDocumentCache{
		slots:  make([]documentSlot, maxEntries),
		free:   free,
		index:  make(map[string]int, maxEntries),
		newest: noSlot,
		oldest: noSlot,
	}, nil
}

// Len returns the number of cached documents.
func (c *LRUDocumentCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.index)
}

// Get implements DocumentCache.
func (c *LRUDocumentCache) Get(query string) (*ast.Document, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	i, ok := c.index[query]
	if !ok {
		return nil, false
	}
	c.touch(i)
	return c.slots[i].document, true
}

// Add implements DocumentCache.
func (c *LRUDocumentCache) Add(query string, document *ast.Document) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if i, ok := c.index[query]; ok {
		c.slots[i].document = document
		c.touch(i)
		return
	}

	i, ok := c.free.NextSet(0)
	if !ok {
		i = uint(c.evictOldest())
	}
	c.free.Clear(i)

	c.slots[i] = documentSlot{
		query:    query,
		document: document,
	}
	c.pushNewest(int(i))
	c.index[query] = int(i)
}

// evictOldest drops the least recently used document and returns its slot.
func (c *LRUDocumentCache) evictOldest() int {
	i := c.oldest
	delete(c.index, c.slots[i].query)
	c.unlink(i)
	c.slots[i] = documentSlot{}
	c.free.Set(uint(i))
	return i
}

func (c *LRUDocumentCache) touch(i int) {
	if c.newest != i {
		c.unlink(i)
		c.pushNewest(i)
	}
}

func (c *LRUDocumentCache) pushNewest(i int) {
	slot := &c.slots[i]
	slot.newer = noSlot
	slot.older = c.newest
	if c.newest != noSlot {
		c.slots[c.newest].newer = i
	} else {
		c.oldest = i
	}
	c.newest = i
}

func (c *LRUDocumentCache) unlink(i int) {
	slot := &c.slots[i]
	if slot.newer != noSlot {
		c.slots[slot.newer].older = slot.older
	} else {
		c.newest = slot.older
	}
	if slot.older != noSlot {
		c.slots[slot.older].newer = slot.newer
	} else {
		c.oldest = slot.newer
	}
	slot.newer, slot.older = noSlot, noSlot
}
