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
	"fmt"
	"sort"
	"sync"
)

// Factory creates a DataLoader.
type Factory interface {
	Create() (*DataLoader, error)
}

// The FactoryFunc type is an adapter to allow the use of ordinary functions as Factory. If f is a
// function with the appropriate signature, FactoryFunc(f) is a Factory that calls f.
type FactoryFunc func() (*DataLoader, error)

// Create implements Factory by simply calling f()
func (f FactoryFunc) Create() (*DataLoader, error) {
	return f()
}

// RegisterInfo provides necessary information to register a DataLoader.
type RegisterInfo struct {
	// A string key that uniquely identifies the DataLoader registered in a Manager by this Info.
	Key string

	// Factory that creates DataLoader
	Factory Factory
}

// Manager provides a way to register and dispatch a collection of DataLoaders. A thunk returned by
// LoadWith dispatches every registered loader with pending tasks before waiting on its own task, so
// forcing the first thunk of a resolution level flushes all loaders queued at that level.
type Manager struct {
	// Lock that guards loaders and keys
	mutex sync.RWMutex

	// A map from RegisterInfo.Key to the created DataLoader instance
	loaders map[string]*DataLoader

	// Keys of loaders in registration order
	keys []string

	// Mutex that prevent multiple DispatchAll's to be executed concurrently.
	dispatchMutex sync.Mutex
}

// GetOrCreate creates and adds a new DataLoader if one does not already exist with the key given in
// info.Key.
func (manager *Manager) GetOrCreate(info *RegisterInfo) (*DataLoader, error) {
	// Check whether the dataloader already exists.
	if loader := manager.Get(info.Key); loader != nil {
		return loader, nil
	}

	if info.Factory == nil {
		return nil, fmt.Errorf(`DataLoader factory for "%s" is not provided`, info.Key)
	}

	// Create a new one.
	loader, err := info.Factory.Create()
	if err != nil {
		return nil, err
	}

	// Reject nil loader.
	if loader == nil {
		return nil, fmt.Errorf(`DataLoader factory for "%s" returns a nil instance which is not `+
			`valid for registration`, info.Key)
	}

	// Register loader.
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	if registeredLoader, registered := manager.loaders[info.Key]; registered {
		return registeredLoader, nil
	}
	if manager.loaders == nil {
		manager.loaders = map[string]*DataLoader{}
	}
	manager.loaders[info.Key] = loader
	manager.keys = append(manager.keys, info.Key)

	return loader, nil
}

// Get returns the DataLoader registered with the key or nil if there's none.
func (manager *Manager) Get(key string) *DataLoader {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return manager.loaders[key]
}

// Keys returns keys of registered DataLoaders in sorted order.
func (manager *Manager) Keys() []string {
	manager.mutex.RLock()
	keys := make([]string, len(manager.keys))
	copy(keys, manager.keys)
	manager.mutex.RUnlock()
	sort.Strings(keys)
	return keys
}

func (manager *Manager) registered() []*DataLoader {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	loaders := make([]*DataLoader, 0, len(manager.keys))
	for _, key := range manager.keys {
		loaders = append(loaders, manager.loaders[key])
	}
	return loaders
}

// HasPendingDataLoaders returns true if any registered DataLoader has tasks waiting for dispatch.
func (manager *Manager) HasPendingDataLoaders() bool {
	for _, loader := range manager.registered() {
		if loader.HasPendingTasks() {
			return true
		}
	}
	return false
}

// DispatchAll dispatches all registered DataLoaders. Loaders are visited in registration order.
func (manager *Manager) DispatchAll(ctx context.Context) {
	mutex := &manager.dispatchMutex
	mutex.Lock()
	defer mutex.Unlock()
	for _, loader := range manager.registered() {
		loader.Dispatch(ctx)
	}
}

// LoadWith requests the value identified by key from the given loader. Unlike loader.Load, forcing
// the returned thunk dispatches every pending loader in the manager.
func (manager *Manager) LoadWith(ctx context.Context, loader *DataLoader, key Key) (Thunk, error) {
	task, err := loader.enqueue(key)
	if err != nil {
		return nil, err
	}
	return task.thunk(ctx, func(ctx context.Context) {
		manager.DispatchAll(ctx)
		// The loader may not be registered with the manager.
		loader.Dispatch(ctx)
	}), nil
}

// LoadManyWith is like LoadWith but for multiple keys.
func (manager *Manager) LoadManyWith(ctx context.Context, loader *DataLoader, keys ...Key) ([]Thunk, error) {
	thunks := make([]Thunk, 0, len(keys))
	for _, key := range keys {
		thunk, err := manager.LoadWith(ctx, loader, key)
		if err != nil {
			return nil, err
		}
		thunks = append(thunks, thunk)
	}
	return thunks, nil
}

// ClearAll clears cache of every registered DataLoader.
func (manager *Manager) ClearAll() {
	for _, loader := range manager.registered() {
		loader.ClearAll()
	}
}
