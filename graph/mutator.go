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
	"sync"

	"github.com/botobag/socialgraph/model"
	"github.com/botobag/socialgraph/store"
)

// Mutator performs the writes of the Mutation type. Operations that touch more than one record run
// as journaled steps: either every step is applied or the applied ones are compensated and the
// operation fails with ErrKindStorage.
//
// Graph mutations (subscriptions, user deletion, profile creation) are serialized by the Mutator.
// Reads made for a mutation go to the store directly, never through loaders. After writing, the
// Mutator updates the Loaders carried by ctx (see WithLoaders) so fields resolved later in the same
// response observe the write.
type Mutator struct {
	store   *store.Store
	logger  *slog.Logger
	metrics *Metrics

	// mutex serializes graph mutations.
	mutex sync.Mutex
}

// NewMutator creates a Mutator over s. logger and metrics may be nil.
func NewMutator(s *store.Store, logger *slog.Logger, metrics *Metrics) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{
		store:   s,
		logger:  logger,
		metrics: metrics,
	}
}

func (m *Mutator) newJournal(op Op) *journal {
	return newJournal(op, m.logger, m.metrics)
}

// findUser reads the user with the given id from the store.
func (m *Mutator) findUser(ctx context.Context, op Op, id string) (*model.User, error) {
	user, err := m.store.Users.FindOne(ctx, store.Equals("id", id))
	if err != nil {
		if IsKind(err, ErrKindNotFound) {
			return nil, notFound(op, "user", id)
		}
		return nil, storageError(op, err)
	}
	return user, nil
}

// findProfileOf reads the profile of the user from the store. It returns nil if there's none.
func (m *Mutator) findProfileOf(ctx context.Context, op Op, userID string) (*model.Profile, error) {
	profile, err := m.store.Profiles.FindOne(ctx, store.Equals("userId", userID))
	if err != nil {
		if IsKind(err, ErrKindNotFound) {
			return nil, nil
		}
		return nil, storageError(op, err)
	}
	return profile, nil
}

// checkMemberType fails with ErrKindNotFound if there's no member type with the given id.
func (m *Mutator) checkMemberType(ctx context.Context, op Op, id model.MemberTypeID) error {
	_, err := m.store.MemberTypes.FindOne(ctx, store.Equals("id", id))
	if err != nil {
		if IsKind(err, ErrKindNotFound) {
			return notFound(op, "member type", string(id))
		}
		return storageError(op, err)
	}
	return nil
}

// singleWriteError maps the error of a single-record write.
func singleWriteError(op Op, entity string, id string, err error) error {
	if IsKind(err, ErrKindNotFound) {
		return notFound(op, entity, id)
	}
	return storageError(op, err)
}

// rewriteSubscriptions adds a step to j which replaces the subscription list of user with ids. It
// returns the updated user.
func (m *Mutator) rewriteSubscriptions(ctx context.Context, j *journal, user *model.User, ids []string) (*model.User, error) {
	var updated *model.User
	previous := user.SubscribedToUserIDs
	err := j.do(ctx, fmt.Sprintf("rewrite subscriptions of user %q", user.ID),
		func(ctx context.Context) error {
			var err error
			updated, err = m.store.Users.Change(ctx, user.ID, model.SetSubscriptions(ids))
			return err
		},
		func(ctx context.Context) error {
			_, err := m.store.Users.Change(ctx, user.ID, model.SetSubscriptions(previous))
			return err
		})
	return updated, err
}

//===----------------------------------------------------------------------------------------====//
// Subscriptions
//===----------------------------------------------------------------------------------------====//

// Subscribe subscribes the user subscriberID to the user targetID. The edge is recorded on both
// users: targetID is appended to the subscriber's list and subscriberID to the target's list. The
// subscriber is written first. It returns the updated subscriber.
func (m *Mutator) Subscribe(ctx context.Context, subscriberID string, targetID string) (*model.User, error) {
	const op Op = "graph.Mutator.Subscribe"

	if subscriberID == targetID {
		return nil, NewError(fmt.Sprintf("user %q cannot subscribe to itself", subscriberID), op,
			ErrKindSelfReference)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	subscriber, err := m.findUser(ctx, op, subscriberID)
	if err != nil {
		return nil, err
	}
	target, err := m.findUser(ctx, op, targetID)
	if err != nil {
		return nil, err
	}

	if subscriber.IsSubscribedTo(targetID) {
		return nil, NewError(fmt.Sprintf("user %q is already subscribed to user %q", subscriberID, targetID),
			op, ErrKindAlreadyExists)
	}

	j := m.newJournal(op)
	updatedSubscriber, err := m.rewriteSubscriptions(ctx, j, subscriber,
		model.AppendID(subscriber.SubscribedToUserIDs, targetID))
	if err != nil {
		return nil, err
	}

	updatedTarget := target
	if !target.IsSubscribedTo(subscriberID) {
		updatedTarget, err = m.rewriteSubscriptions(ctx, j, target,
			model.AppendID(target.SubscribedToUserIDs, subscriberID))
		if err != nil {
			return nil, err
		}
	}

	loaders := LoadersFromContext(ctx)
	loaders.PrimeUser(updatedSubscriber)
	loaders.PrimeUser(updatedTarget)

	m.logger.Debug("subscribed",
		slog.String("subscriber", subscriberID),
		slog.String("target", targetID))

	return updatedSubscriber, nil
}

// Unsubscribe removes the edge between the users unsubscriberID and targetID. The edge must be
// present on both users. It returns the updated unsubscriber.
func (m *Mutator) Unsubscribe(ctx context.Context, unsubscriberID string, targetID string) (*model.User, error) {
	const op Op = "graph.Mutator.Unsubscribe"

	m.mutex.Lock()
	defer m.mutex.Unlock()

	unsubscriber, err := m.findUser(ctx, op, unsubscriberID)
	if err != nil {
		return nil, err
	}
	target, err := m.findUser(ctx, op, targetID)
	if err != nil {
		return nil, err
	}

	if !unsubscriber.IsSubscribedTo(targetID) || !target.IsSubscribedTo(unsubscriberID) {
		return nil, NewError(fmt.Sprintf("user %q is not subscribed to user %q", unsubscriberID, targetID),
			op, ErrKindBadRequest)
	}

	j := m.newJournal(op)
	updatedUnsubscriber, err := m.rewriteSubscriptions(ctx, j, unsubscriber,
		model.RemoveID(unsubscriber.SubscribedToUserIDs, targetID))
	if err != nil {
		return nil, err
	}
	updatedTarget, err := m.rewriteSubscriptions(ctx, j, target,
		model.RemoveID(target.SubscribedToUserIDs, unsubscriberID))
	if err != nil {
		return nil, err
	}

	loaders := LoadersFromContext(ctx)
	loaders.PrimeUser(updatedUnsubscriber)
	loaders.PrimeUser(updatedTarget)

	m.logger.Debug("unsubscribed",
		slog.String("unsubscriber", unsubscriberID),
		slog.String("target", targetID))

	return updatedUnsubscriber, nil
}

//===----------------------------------------------------------------------------------------====//
// Users
//===----------------------------------------------------------------------------------------====//

// CreateUserInput contains the fields of a new user.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
}

// CreateUser creates a user without subscriptions.
func (m *Mutator) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	const op Op = "graph.Mutator.CreateUser"

	user, err := m.store.Users.Create(ctx, &model.User{
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		Email:               input.Email,
		SubscribedToUserIDs: []string{},
	})
	if err != nil {
		return nil, storageError(op, err)
	}

	LoadersFromContext(ctx).PrimeUser(user)
	return user, nil
}

// UpdateUser changes the name and email of a user. Subscriptions can only be changed by Subscribe
// and Unsubscribe so patch.SubscribedToUserIDs is ignored.
func (m *Mutator) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	const op Op = "graph.Mutator.UpdateUser"

	patch.SubscribedToUserIDs = nil
	user, err := m.store.Users.Change(ctx, id, patch)
	if err != nil {
		return nil, singleWriteError(op, "user", id, err)
	}

	LoadersFromContext(ctx).PrimeUser(user)
	return user, nil
}

// DeleteUser deletes the user with the given id together with its profile and posts, and removes
// the id from the subscription list of every other user. Either all of these are applied or none.
// It returns the deleted user.
func (m *Mutator) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	const op Op = "graph.Mutator.DeleteUser"

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Read everything the cascade touches before the first write.
	user, err := m.findUser(ctx, op, id)
	if err != nil {
		return nil, err
	}
	profile, err := m.findProfileOf(ctx, op, id)
	if err != nil {
		return nil, err
	}
	posts, err := m.store.Posts.FindMany(ctx, store.Equals("userId", id))
	if err != nil {
		return nil, storageError(op, err)
	}
	followers, err := m.store.Users.FindMany(ctx, store.InArray("subscribedToUserIds", id))
	if err != nil {
		return nil, storageError(op, err)
	}

	j := m.newJournal(op)

	err = j.do(ctx, fmt.Sprintf("delete user %q", id),
		func(ctx context.Context) error {
			_, err := m.store.Users.Delete(ctx, id)
			return err
		},
		func(ctx context.Context) error {
			_, err := m.store.Users.Create(ctx, user)
			return err
		})
	if err != nil {
		return nil, err
	}

	if profile != nil {
		err = j.do(ctx, fmt.Sprintf("delete profile %q", profile.ID),
			func(ctx context.Context) error {
				_, err := m.store.Profiles.Delete(ctx, profile.ID)
				return err
			},
			func(ctx context.Context) error {
				_, err := m.store.Profiles.Create(ctx, profile)
				return err
			})
		if err != nil {
			return nil, err
		}
	}

	for _, post := range posts {
		post := post
		err = j.do(ctx, fmt.Sprintf("delete post %q", post.ID),
			func(ctx context.Context) error {
				_, err := m.store.Posts.Delete(ctx, post.ID)
				return err
			},
			func(ctx context.Context) error {
				_, err := m.store.Posts.Create(ctx, post)
				return err
			})
		if err != nil {
			return nil, err
		}
	}

	updatedFollowers := make([]*model.User, 0, len(followers))
	for _, follower := range followers {
		if follower.ID == id {
			continue
		}
		updated, err := m.rewriteSubscriptions(ctx, j, follower, model.RemoveID(follower.SubscribedToUserIDs, id))
		if err != nil {
			return nil, err
		}
		updatedFollowers = append(updatedFollowers, updated)
	}

	loaders := LoadersFromContext(ctx)
	loaders.ForgetUser(id)
	if profile != nil {
		loaders.ForgetProfile(profile.ID, id)
	}
	for _, post := range posts {
		loaders.ForgetPost(post.ID, id)
	}
	loaders.ForgetPostsByUser(id)
	for _, follower := range updatedFollowers {
		loaders.PrimeUser(follower)
	}

	m.logger.Debug("deleted user",
		slog.String("user", id),
		slog.Bool("profile", profile != nil),
		slog.Int("posts", len(posts)),
		slog.Int("followers", len(updatedFollowers)))

	return user, nil
}

//===----------------------------------------------------------------------------------------====//
// Posts
//===----------------------------------------------------------------------------------------====//

// CreatePostInput contains the fields of a new post.
type CreatePostInput struct {
	UserID  string
	Title   string
	Content string
}

// CreatePost creates a post owned by an existing user.
func (m *Mutator) CreatePost(ctx context.Context, input CreatePostInput) (*model.Post, error) {
	const op Op = "graph.Mutator.CreatePost"

	// The owner must not be deleted between the check and the write.
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, err := m.findUser(ctx, op, input.UserID); err != nil {
		return nil, err
	}

	post, err := m.store.Posts.Create(ctx, &model.Post{
		UserID:  input.UserID,
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		return nil, storageError(op, err)
	}

	LoadersFromContext(ctx).PrimePost(post)
	return post, nil
}

// UpdatePost changes the title and content of a post.
func (m *Mutator) UpdatePost(ctx context.Context, id string, patch model.PostPatch) (*model.Post, error) {
	const op Op = "graph.Mutator.UpdatePost"

	post, err := m.store.Posts.Change(ctx, id, patch)
	if err != nil {
		return nil, singleWriteError(op, "post", id, err)
	}

	LoadersFromContext(ctx).PrimePost(post)
	return post, nil
}

// DeletePost deletes a post and returns it.
func (m *Mutator) DeletePost(ctx context.Context, id string) (*model.Post, error) {
	const op Op = "graph.Mutator.DeletePost"

	post, err := m.store.Posts.Delete(ctx, id)
	if err != nil {
		return nil, singleWriteError(op, "post", id, err)
	}

	LoadersFromContext(ctx).ForgetPost(post.ID, post.UserID)
	return post, nil
}

//===----------------------------------------------------------------------------------------====//
// Profiles
//===----------------------------------------------------------------------------------------====//

// CreateProfileInput contains the fields of a new profile.
type CreateProfileInput struct {
	UserID       string
	Avatar       string
	Sex          string
	Birthday     int
	Country      string
	Street       string
	City         string
	MemberTypeID model.MemberTypeID
}

// CreateProfile creates the profile of an existing user. A user has at most one profile and the
// member type must exist.
func (m *Mutator) CreateProfile(ctx context.Context, input CreateProfileInput) (*model.Profile, error) {
	const op Op = "graph.Mutator.CreateProfile"

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, err := m.findUser(ctx, op, input.UserID); err != nil {
		return nil, err
	}
	if err := m.checkMemberType(ctx, op, input.MemberTypeID); err != nil {
		return nil, err
	}

	existing, err := m.findProfileOf(ctx, op, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewError(fmt.Sprintf("user %q already has a profile", input.UserID), op,
			ErrKindAlreadyExists)
	}

	profile, err := m.store.Profiles.Create(ctx, &model.Profile{
		UserID:       input.UserID,
		Avatar:       input.Avatar,
		Sex:          input.Sex,
		Birthday:     input.Birthday,
		Country:      input.Country,
		Street:       input.Street,
		City:         input.City,
		MemberTypeID: input.MemberTypeID,
	})
	if err != nil {
		return nil, storageError(op, err)
	}

	LoadersFromContext(ctx).PrimeProfile(profile)
	return profile, nil
}

// UpdateProfile changes a profile. The member type must exist if it is changed.
func (m *Mutator) UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.Profile, error) {
	const op Op = "graph.Mutator.UpdateProfile"

	if patch.MemberTypeID != nil {
		if err := m.checkMemberType(ctx, op, *patch.MemberTypeID); err != nil {
			return nil, err
		}
	}

	profile, err := m.store.Profiles.Change(ctx, id, patch)
	if err != nil {
		return nil, singleWriteError(op, "profile", id, err)
	}

	LoadersFromContext(ctx).PrimeProfile(profile)
	return profile, nil
}

// DeleteProfile deletes a profile and returns it.
func (m *Mutator) DeleteProfile(ctx context.Context, id string) (*model.Profile, error) {
	const op Op = "graph.Mutator.DeleteProfile"

	profile, err := m.store.Profiles.Delete(ctx, id)
	if err != nil {
		return nil, singleWriteError(op, "profile", id, err)
	}

	LoadersFromContext(ctx).ForgetProfile(profile.ID, profile.UserID)
	return profile, nil
}

//===----------------------------------------------------------------------------------------====//
// Member types
//===----------------------------------------------------------------------------------------====//

// UpdateMemberType changes the discount and posts limit of a member type.
func (m *Mutator) UpdateMemberType(ctx context.Context, id model.MemberTypeID, patch model.MemberTypePatch) (*model.MemberType, error) {
	const op Op = "graph.Mutator.UpdateMemberType"

	memberType, err := m.store.MemberTypes.Change(ctx, string(id), patch)
	if err != nil {
		return nil, singleWriteError(op, "member type", string(id), err)
	}

	LoadersFromContext(ctx).PrimeMemberType(memberType)
	return memberType, nil
}
