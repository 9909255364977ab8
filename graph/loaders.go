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
	"context"
	"fmt"
	"log/slog"

	"github.com/botobag/socialgraph/dataloader"
	"github.com/botobag/socialgraph/model"
	"github.com/botobag/socialgraph/store"
)

// Thunk defers the value of a field. It has the exact signature graphql-go dethunks.
type Thunk = func() (interface{}, error)

// Names of the loaders in a Loaders set
const (
	UsersLoader            = "users"
	PostsLoader            = "posts"
	ProfilesLoader         = "profiles"
	MemberTypesLoader      = "memberTypes"
	PostsByUserLoader      = "postsByUser"
	ProfileByUserLoader    = "profileByUser"
	MemberTypeByUserLoader = "memberTypeByUser"
)

// LoadersConfig configures a Loaders set.
type LoadersConfig struct {
	// Maximum number of keys in one repository fetch. 0 means unlimited.
	MaxBatchSize uint

	// Logger for dispatch reports. Default is slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *Metrics
}

// Loaders is the set of batch loaders serving one execution. Loaders never share cache state with
// each other or with another set.
//
// Users, Posts, Profiles and MemberTypes load records by primary id. A missing id completes with a
// not-found error for that key only. PostsByUser loads the posts of a user and ProfileByUser loads
// the profile of a user (nil if the user doesn't have one). MemberTypeByUser resolves the member
// type of a user's profile through ProfileByUser and MemberTypes, so it shares their caches.
type Loaders struct {
	manager dataloader.Manager
	metrics *Metrics

	users         *dataloader.DataLoader
	posts         *dataloader.DataLoader
	profiles      *dataloader.DataLoader
	memberTypes   *dataloader.DataLoader
	postsByUser   *dataloader.DataLoader
	profileByUser *dataloader.DataLoader

	memberTypeByUser *dataloader.DataLoader
}

// NewLoaders creates a fresh Loaders set reading from s.
func NewLoaders(s *store.Store, config LoadersConfig) (*Loaders, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := &Loaders{
		metrics: config.Metrics,
	}

	register := func(name string, batchLoader dataloader.BatchLoader, cacheMap dataloader.CacheMap) (*dataloader.DataLoader, error) {
		return l.manager.GetOrCreate(&dataloader.RegisterInfo{
			Key: name,
			Factory: dataloader.FactoryFunc(func() (*dataloader.DataLoader, error) {
				return dataloader.New(dataloader.Config{
					BatchLoader:  batchLoader,
					MaxBatchSize: config.MaxBatchSize,
					CacheMap:     cacheMap,
					Name:         name,
					Logger:       logger,
				})
			}),
		})
	}

	var err error
	if l.users, err = register(UsersLoader, byID(s.Users, "user", l.metrics), nil); err != nil {
		return nil, err
	}
	if l.posts, err = register(PostsLoader, byID(s.Posts, "post", l.metrics), nil); err != nil {
		return nil, err
	}
	if l.profiles, err = register(ProfilesLoader, byID(s.Profiles, "profile", l.metrics), nil); err != nil {
		return nil, err
	}
	if l.memberTypes, err = register(MemberTypesLoader, byID(s.MemberTypes, "member type", l.metrics), nil); err != nil {
		return nil, err
	}
	if l.postsByUser, err = register(PostsByUserLoader, postsByUser(s.Posts, l.metrics), nil); err != nil {
		return nil, err
	}
	if l.profileByUser, err = register(ProfileByUserLoader, profileByUser(s.Profiles, l.metrics), nil); err != nil {
		return nil, err
	}
	// Values come from the caches of profileByUser and memberTypes which writes keep up to date.
	if l.memberTypeByUser, err = register(MemberTypeByUserLoader, l.memberTypeOfUsers(), dataloader.NoCacheMap); err != nil {
		return nil, err
	}

	return l, nil
}

// ClearAll clears the cache of every loader in the set.
func (l *Loaders) ClearAll() {
	l.manager.ClearAll()
}

// HasPending returns true if some keys are waiting for dispatch.
func (l *Loaders) HasPending() bool {
	return l.manager.HasPendingDataLoaders()
}

func (l *Loaders) load(ctx context.Context, loader *dataloader.DataLoader, key string) Thunk {
	l.metrics.observeLoadRequest(loader.Name())
	thunk, err := l.manager.LoadWith(ctx, loader, key)
	if err != nil {
		return func() (interface{}, error) {
			return nil, err
		}
	}
	return thunk
}

// User returns a Thunk for the user with the given id.
func (l *Loaders) User(ctx context.Context, id string) Thunk {
	return l.load(ctx, l.users, id)
}

// UserList returns one Thunk per id in the same order.
func (l *Loaders) UserList(ctx context.Context, ids []string) []Thunk {
	keys := make([]dataloader.Key, len(ids))
	for i, id := range ids {
		l.metrics.observeLoadRequest(l.users.Name())
		keys[i] = id
	}
	thunks := make([]Thunk, len(ids))
	loaded, err := l.manager.LoadManyWith(ctx, l.users, keys...)
	for i := range thunks {
		if err != nil {
			thunks[i] = func() (interface{}, error) {
				return nil, err
			}
		} else {
			thunks[i] = loaded[i]
		}
	}
	return thunks
}

// Post returns a Thunk for the post with the given id.
func (l *Loaders) Post(ctx context.Context, id string) Thunk {
	return l.load(ctx, l.posts, id)
}

// Profile returns a Thunk for the profile with the given id.
func (l *Loaders) Profile(ctx context.Context, id string) Thunk {
	return l.load(ctx, l.profiles, id)
}

// MemberType returns a Thunk for the member type with the given id.
func (l *Loaders) MemberType(ctx context.Context, id model.MemberTypeID) Thunk {
	return l.load(ctx, l.memberTypes, string(id))
}

// PostsByUser returns a Thunk for the posts owned by the user. The value is a []*model.Post which
// is empty if the user has no posts.
func (l *Loaders) PostsByUser(ctx context.Context, userID string) Thunk {
	return l.load(ctx, l.postsByUser, userID)
}

// ProfileByUser returns a Thunk for the profile of the user. The value is nil if the user has no
// profile.
func (l *Loaders) ProfileByUser(ctx context.Context, userID string) Thunk {
	return l.load(ctx, l.profileByUser, userID)
}

// MemberTypeByUser returns a Thunk for the member type of the user's profile. The value is nil if
// the user has no profile.
func (l *Loaders) MemberTypeByUser(ctx context.Context, userID string) Thunk {
	return l.load(ctx, l.memberTypeByUser, userID)
}

// LoadUser loads the user with the given id and waits for the result.
func (l *Loaders) LoadUser(ctx context.Context, id string) (*model.User, error) {
	value, err := l.User(ctx, id)()
	if err != nil {
		return nil, err
	}
	return value.(*model.User), nil
}

// LoadProfileByUser loads the profile of the user and waits for the result.
func (l *Loaders) LoadProfileByUser(ctx context.Context, userID string) (*model.Profile, error) {
	value, err := l.ProfileByUser(ctx, userID)()
	if err != nil || value == nil {
		return nil, err
	}
	return value.(*model.Profile), nil
}

//===----------------------------------------------------------------------------------------====//
// Invalidation
//===----------------------------------------------------------------------------------------====//

// The following methods keep cached values in line with writes made during an execution. A Prime
// method replaces the cached value of the record's id. They are no-ops on a nil *Loaders.

// PrimeUser caches u as the user with u.ID.
func (l *Loaders) PrimeUser(u *model.User) {
	if l == nil {
		return
	}
	l.users.Clear(u.ID)
	l.users.Prime(u.ID, u.Clone())
}

// ForgetUser drops the cached user with the given id.
func (l *Loaders) ForgetUser(id string) {
	if l == nil {
		return
	}
	l.users.Clear(id)
}

// PrimePost caches p as the post with p.ID and drops the cached post list of its owner.
func (l *Loaders) PrimePost(p *model.Post) {
	if l == nil {
		return
	}
	l.posts.Clear(p.ID)
	l.posts.Prime(p.ID, p.Clone())
	l.postsByUser.Clear(p.UserID)
}

// ForgetPost drops the cached post with the given id and the cached post list of its owner.
func (l *Loaders) ForgetPost(id string, userID string) {
	if l == nil {
		return
	}
	l.posts.Clear(id)
	l.postsByUser.Clear(userID)
}

// ForgetPostsByUser drops the cached post list of the user.
func (l *Loaders) ForgetPostsByUser(userID string) {
	if l == nil {
		return
	}
	l.postsByUser.Clear(userID)
}

// PrimeProfile caches p as the profile with p.ID and as the profile of p.UserID.
func (l *Loaders) PrimeProfile(p *model.Profile) {
	if l == nil {
		return
	}
	l.profiles.Clear(p.ID)
	l.profiles.Prime(p.ID, p.Clone())
	l.profileByUser.Clear(p.UserID)
	l.profileByUser.Prime(p.UserID, p.Clone())
}

// ForgetProfile drops the cached profile with the given id and the cached profile of its owner.
func (l *Loaders) ForgetProfile(id string, userID string) {
	if l == nil {
		return
	}
	l.profiles.Clear(id)
	l.profileByUser.Clear(userID)
}

// PrimeMemberType caches m as the member type with m.ID.
func (l *Loaders) PrimeMemberType(m *model.MemberType) {
	if l == nil {
		return
	}
	l.memberTypes.Clear(string(m.ID))
	l.memberTypes.Prime(string(m.ID), m.Clone())
}

//===----------------------------------------------------------------------------------------====//
// Batch loaders
//===----------------------------------------------------------------------------------------====//

// keysOf returns the distinct keys of tasks as strings in list order.
func keysOf(tasks *dataloader.TaskList) []string {
	var (
		keys []string
		seen = map[string]bool{}
	)
	for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
		key := fmt.Sprint(taskIter.Task.Key())
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// failAll completes every task in tasks with err.
func failAll(tasks *dataloader.TaskList, err error) {
	for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
		taskIter.Task.SetError(err)
	}
}

// byID creates a BatchLoader that fetches records of c by primary id in one FindMany call. Results
// are matched to tasks by id so the order returned by the repository doesn't matter.
func byID[T store.Record[T]](c store.Collection[T], entity string, metrics *Metrics) dataloader.BatchLoader {
	op := Op(fmt.Sprintf("graph.Loaders(%s)", c.Name()))
	return dataloader.BatchLoadFunc(func(ctx context.Context, tasks *dataloader.TaskList) {
		ids := keysOf(tasks)
		records, err := c.FindMany(ctx, store.EqualsAnyOf("id", ids...))
		metrics.observeBatchLoad(c.Name(), len(ids), err)
		if err != nil {
			failAll(tasks, storageError(op, err))
			return
		}

		found := make(map[string]T, len(records))
		for _, record := range records {
			found[record.GetID()] = record
		}

		for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
			task := taskIter.Task
			id := fmt.Sprint(task.Key())
			if record, ok := found[id]; ok {
				task.Complete(record)
			} else {
				task.SetError(notFound(op, entity, id))
			}
		}
	})
}

// postsByUser creates a BatchLoader that fetches the posts of many users in one FindMany call.
func postsByUser(c store.Collection[*model.Post], metrics *Metrics) dataloader.BatchLoader {
	op := Op("graph.Loaders(postsByUser)")
	return dataloader.BatchLoadFunc(func(ctx context.Context, tasks *dataloader.TaskList) {
		userIDs := keysOf(tasks)
		posts, err := c.FindMany(ctx, store.EqualsAnyOf("userId", userIDs...))
		metrics.observeBatchLoad(PostsByUserLoader, len(userIDs), err)
		if err != nil {
			failAll(tasks, storageError(op, err))
			return
		}

		byUser := make(map[string][]*model.Post, len(userIDs))
		for _, post := range posts {
			byUser[post.UserID] = append(byUser[post.UserID], post)
		}

		for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
			task := taskIter.Task
			owned := byUser[fmt.Sprint(task.Key())]
			if owned == nil {
				owned = []*model.Post{}
			}
			task.Complete(owned)
		}
	})
}

// memberTypeOfUsers creates the BatchLoader of MemberTypeByUser. The profiles of the batch are read
// with one ProfileByUser dispatch, then their member types with one MemberTypes dispatch. It runs
// inside Manager.DispatchAll so it dispatches the two loaders directly instead of through the
// manager.
func (l *Loaders) memberTypeOfUsers() dataloader.BatchLoader {
	return dataloader.BatchLoadFunc(func(ctx context.Context, tasks *dataloader.TaskList) {
		userIDs := keysOf(tasks)
		profileKeys := make([]dataloader.Key, len(userIDs))
		for i, userID := range userIDs {
			profileKeys[i] = userID
		}
		profileThunks, err := l.profileByUser.LoadMany(ctx, profileKeys...)
		if err != nil {
			failAll(tasks, err)
			return
		}

		var (
			profiles       = dataloader.Collect(profileThunks)
			profileResults = make(map[string]dataloader.Result, len(userIDs))
			memberTypeKeys []dataloader.Key
			seen           = map[model.MemberTypeID]bool{}
		)
		for i, userID := range userIDs {
			profileResults[userID] = profiles[i]
			if profile, ok := profiles[i].Value.(*model.Profile); ok && profile != nil && !seen[profile.MemberTypeID] {
				seen[profile.MemberTypeID] = true
				memberTypeKeys = append(memberTypeKeys, string(profile.MemberTypeID))
			}
		}

		memberTypeThunks, err := l.memberTypes.LoadMany(ctx, memberTypeKeys...)
		if err != nil {
			failAll(tasks, err)
			return
		}
		memberTypes := make(map[string]dataloader.Result, len(memberTypeKeys))
		for i, result := range dataloader.Collect(memberTypeThunks) {
			memberTypes[memberTypeKeys[i].(string)] = result
		}

		for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
			task := taskIter.Task
			profile := profileResults[fmt.Sprint(task.Key())]
			switch {
			case profile.Err != nil:
				task.SetError(profile.Err)
			case profile.Value == nil:
				task.Complete(nil)
			default:
				memberType := memberTypes[string(profile.Value.(*model.Profile).MemberTypeID)]
				if memberType.Err != nil {
					task.SetError(memberType.Err)
				} else {
					task.Complete(memberType.Value)
				}
			}
		}
	})
}

// profileByUser creates a BatchLoader that fetches the profiles of many users in one FindMany
// call.
func profileByUser(c store.Collection[*model.Profile], metrics *Metrics) dataloader.BatchLoader {
	op := Op("graph.Loaders(profileByUser)")
	return dataloader.BatchLoadFunc(func(ctx context.Context, tasks *dataloader.TaskList) {
		userIDs := keysOf(tasks)
		profiles, err := c.FindMany(ctx, store.EqualsAnyOf("userId", userIDs...))
		metrics.observeBatchLoad(ProfileByUserLoader, len(userIDs), err)
		if err != nil {
			failAll(tasks, storageError(op, err))
			return
		}

		byUser := make(map[string]*model.Profile, len(profiles))
		for _, profile := range profiles {
			// At most one profile per user. Keep the first one if the store says otherwise.
			if _, exists := byUser[profile.UserID]; !exists {
				byUser[profile.UserID] = profile
			}
		}

		for taskIter, taskEnd := tasks.Begin(), tasks.End(); taskIter != taskEnd; taskIter = taskIter.Next() {
			task := taskIter.Task
			if profile, ok := byUser[fmt.Sprint(task.Key())]; ok {
				task.Complete(profile)
			} else {
				task.Complete(nil)
			}
		}
	})
}
