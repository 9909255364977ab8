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

package dataloader

import (
	"sync"
)

// CacheMap stores the tasks of a DataLoader by key. Implementations must be safe for concurrent use.
type CacheMap interface {
	// Get returns the task cached for key or nil.
	Get(key Key) *Task

	// Set stores task unless a task with the same key is already cached, in which case the cached one
	// is returned instead. Otherwise task itself is returned.
	Set(task *Task) *Task

	// Delete removes the task cached for key.
	Delete(key Key)

	// Clear removes every task.
	Clear()
}

//===----------------------------------------------------------------------------------------====//
// DefaultCacheMap
//===----------------------------------------------------------------------------------------====//

// DefaultCacheMap is the CacheMap a DataLoader uses when Config.CacheMap is nil. The zero value is
// ready to use.
type DefaultCacheMap struct {
	mu    sync.RWMutex
	tasks map[Key]*Task
}

var _ CacheMap = (*DefaultCacheMap)(nil)

// Get implements CacheMap.
func (cacheMap *DefaultCacheMap) Get(key Key) *Task {
	cacheMap.mu.RLock()
	defer cacheMap.mu.RUnlock()
	return cacheMap.tasks[key]
}

// Set implements CacheMap.
func (cacheMap *DefaultCacheMap) Set(task *Task) *Task {
	cacheMap.mu.Lock()
	defer cacheMap.mu.Unlock()
	if cached, exists := cacheMap.tasks[task.Key()]; exists {
		return cached
	}
	if cacheMap.tasks == nil {
		cacheMap.tasks = make(map[Key]*Task)
	}
	cacheMap.tasks[task.Key()] = task
	return task
}

// Delete implements CacheMap.
func (cacheMap *DefaultCacheMap) Delete(key Key) {
	cacheMap.mu.Lock()
	delete(cacheMap.tasks, key)
	cacheMap.mu.Unlock()
}

// Clear implements CacheMap.
func (cacheMap *DefaultCacheMap) Clear() {
	cacheMap.mu.Lock()
	cacheMap.tasks = nil
	cacheMap.mu.Unlock()
}

// Len returns the number of cached tasks.
func (cacheMap *DefaultCacheMap) Len() int {
	cacheMap.mu.RLock()
	defer cacheMap.mu.RUnlock()
	return len(cacheMap.tasks)
}

//===----------------------------------------------------------------------------------------====//
// NoCacheMap
//===----------------------------------------------------------------------------------------====//

type noCacheMap struct{}

var _ CacheMap = NoCacheMap

func (noCacheMap) Get(Key) *Task { return nil }
func (noCacheMap) Set(task *Task) *Task { return task }
func (noCacheMap) Delete(Key) {}
func (noCacheMap) Clear() {}

// NoCacheMap disables caching when given as Config.CacheMap. Every Load then queues a new task.
var NoCacheMap CacheMap = noCacheMap{}
