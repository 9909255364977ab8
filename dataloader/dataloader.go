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
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Key is an unique identifier of a value loaded by a DataLoader. It must be comparable.
type Key interface{}

type taskQueue struct {
	// tasks stored in a linked list
	tasks TaskList
}

func (queue *taskQueue) Empty() bool {
	return queue.tasks.Empty()
}

// A DataLoader loads data from a data backend with unique keys such as the id column of a SQL
// table.
//
// Keys requested with Load are collected in a pending queue. The queue is handed to the
// BatchLoader in one piece when Dispatch is called, either explicitly or by forcing one of the
// returned thunks. Every Load for a key after the first one within the lifetime of the loader is
// served from the cache without touching the BatchLoader, including keys whose load failed.
type DataLoader struct {
	config *Config
	logger *slog.Logger

	// Lock that guard accesses to queue
	queueMutex sync.Mutex

	// Queue containing the pending tasks for data loading
	queue *taskQueue

	// cacheMap caches loaded data. It is nil if the cache is disabled.
	cacheMap CacheMap
}

var (
	errMissingBatchLoader = errors.New("batch loader is required to construct a DataLoader")
	errMissingKey         = errors.New("must specify key to identify data to be loaded")
)

// New creates a DataLoader instance from given config.
func New(config Config) (*DataLoader, error) {
	// Check config.
	if config.BatchLoader == nil {
		return nil, errMissingBatchLoader
	}

	// Determine storage for cache.
	cacheMap := config.CacheMap
	if cacheMap == nil {
		// Create a DefaultCacheMap instance.
		cacheMap = &DefaultCacheMap{}
	} else if cacheMap == NoCacheMap {
		cacheMap = nil
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &DataLoader{
		config:   &config,
		logger:   logger,
		queue:    &taskQueue{},
		cacheMap: cacheMap,
	}, nil
}

// BatchLoader returns loader.config.BatchLoader.
func (loader *DataLoader) BatchLoader() BatchLoader {
	return loader.config.BatchLoader
}

// Name returns loader.config.Name.
func (loader *DataLoader) Name() string {
	return loader.config.Name
}

// enqueue returns the task that loads data for key: the cached one if any, otherwise a new task
// added to the pending queue.
func (loader *DataLoader) enqueue(key Key) (*Task, error) {
	if key == nil {
		return nil, errMissingKey
	}

	// Check cache.
	cacheMap := loader.cacheMap
	if cacheMap != nil {
		if task := cacheMap.Get(key); task != nil {
			return task, nil
		}
	}

	// Acquire the lock to enqueue the task.
	queueMutex := &loader.queueMutex
	queueMutex.Lock()
	defer queueMutex.Unlock()

	task := newTask(key)
	if cacheMap != nil {
		if cachedTask := cacheMap.Set(task); cachedTask != task {
			// Someone has enqueued a task for the key since we checked the cache.
			return cachedTask, nil
		}
	}
	loader.queue.tasks.push(task)

	return task, nil
}

// Load requests data identified by the key. It returns a Thunk for the value represented by that
// key.
func (loader *DataLoader) Load(ctx context.Context, key Key) (Thunk, error) {
	task, err := loader.enqueue(key)
	if err != nil {
		return nil, err
	}
	return task.thunk(ctx, loader.Dispatch), nil
}

// LoadMany requests data identified by multiple keys. It returns one Thunk per key in the same
// order.
func (loader *DataLoader) LoadMany(ctx context.Context, keys ...Key) ([]Thunk, error) {
	thunks := make([]Thunk, 0, len(keys))
	for _, key := range keys {
		thunk, err := loader.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		thunks = append(thunks, thunk)
	}
	return thunks, nil
}

// HasPendingTasks returns true if some tasks are waiting for dispatch.
func (loader *DataLoader) HasPendingTasks() bool {
	queueMutex := &loader.queueMutex
	queueMutex.Lock()
	defer queueMutex.Unlock()
	return !loader.queue.Empty()
}

// Dispatch runs jobs to load data specified by tasks in current queue as of the time this function
// is called. The jobs run on the calling goroutine; all tasks in the detached queue are completed
// when Dispatch returns.
func (loader *DataLoader) Dispatch(ctx context.Context) {
	// Acquire the lock to detach the queue from the loader.
	queueMutex := &loader.queueMutex
	queueMutex.Lock()

	// Return quickly if the queue is empty.
	queue := loader.queue
	if queue.Empty() {
		queueMutex.Unlock()
		return
	}

	// Replace with an empty queue.
	loader.queue = &taskQueue{}
	queueMutex.Unlock()

	// Create jobs.
	maxBatchSize := loader.config.MaxBatchSize
	if maxBatchSize == 0 {
		loader.runBatch(ctx, queue.tasks)
		return
	}

	var (
		tasks = queue.tasks
		// tasks will be split into some small sub-lists each of which has at most maxBatchSize tasks.
		// firstTask marks the first task of the sub-list in current batch.
		firstTask = tasks.first
		task      = firstTask
		counter   = maxBatchSize
	)

	for task != nil {
		nextTask := task.next

		counter--
		if counter == 0 {
			loader.runBatch(ctx, TaskList{
				first: firstTask,
				last:  task,
			})

			// Reset counter.
			counter = maxBatchSize
			// Next batch starts from nextTask.
			firstTask = nextTask
		}

		// Move to the next task.
		task = nextTask
	}

	// Dispatch the last batch.
	if firstTask != nil {
		loader.runBatch(ctx, TaskList{
			first: firstTask,
			last:  tasks.last,
		})
	}
}

func (loader *DataLoader) runBatch(ctx context.Context, tasks TaskList) {
	job := &BatchLoadJob{
		ctx:    ctx,
		loader: loader,
		tasks:  tasks,
	}
	job.Run()
}

// Clear the value for the given key from the cache.
func (loader *DataLoader) Clear(key Key) {
	cacheMap := loader.cacheMap
	if cacheMap != nil {
		cacheMap.Delete(key)
	}
}

// ClearAll clears the entire cache.
func (loader *DataLoader) ClearAll() {
	cacheMap := loader.cacheMap
	if cacheMap != nil {
		cacheMap.Clear()
	}
}

// Prime adds the provided key and value to the cache. If the key already exists, no change is made.
func (loader *DataLoader) Prime(key Key, value interface{}) error {
	cacheMap := loader.cacheMap
	if cacheMap != nil {
		// Create a task and complete it with the value.
		task := newTask(key)
		if err := task.Complete(value); err != nil {
			return err
		}

		// Add to the cache.
		cacheMap.Set(task)
	}

	return nil
}

// PrimeError adds the provided key with an error value to the cache. If the key already exists, no
// change is made.
func (loader *DataLoader) PrimeError(key Key, err error) error {
	cacheMap := loader.cacheMap
	if cacheMap != nil {
		// Create a task and complete it with an error value.
		task := newTask(key)
		if err := task.SetError(err); err != nil {
			return err
		}

		// Add to the cache.
		cacheMap.Set(task)
	}

	return nil
}
