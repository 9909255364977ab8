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
	"fmt"

	"github.com/botobag/socialgraph/model"
	"github.com/botobag/socialgraph/store"

	"github.com/graphql-go/graphql"
)

// resolver implements the field resolvers of the schema. Lookups by primary id, and relations
// keyed by the parent's id, go through the Loaders of the request. Other lookups by filter go to
// the store directly.
type resolver struct {
	store   *store.Store
	mutator *Mutator
}

// fieldOf creates a resolver that reads a field of the source of type T.
func fieldOf[T any](typeName string, read func(source T) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		source, ok := p.Source.(T)
		if !ok {
			return nil, sourceError(typeName, p.Source)
		}
		return read(source), nil
	}
}

func sourceError(typeName string, source interface{}) error {
	return NewError(fmt.Sprintf("unexpected source %T for type %s", source, typeName))
}

// loadersOf returns the Loaders of the request.
func loadersOf(p graphql.ResolveParams) (*Loaders, error) {
	loaders := LoadersFromContext(p.Context)
	if loaders == nil {
		return nil, NewError("no loaders in request context", Op("graph.resolver"))
	}
	return loaders, nil
}

// listOf converts records to a []interface{} for list fields.
func listOf[T any](records []T) []interface{} {
	values := make([]interface{}, len(records))
	for i, record := range records {
		values[i] = record
	}
	return values
}

//===----------------------------------------------------------------------------------------====//
// Query
//===----------------------------------------------------------------------------------------====//

func (r *resolver) queryUsers(p graphql.ResolveParams) (interface{}, error) {
	users, err := r.store.Users.FindMany(p.Context)
	if err != nil {
		return nil, storageError("graph.Query.users", err)
	}
	return listOf(users), nil
}

func (r *resolver) queryPosts(p graphql.ResolveParams) (interface{}, error) {
	posts, err := r.store.Posts.FindMany(p.Context)
	if err != nil {
		return nil, storageError("graph.Query.posts", err)
	}
	return listOf(posts), nil
}

func (r *resolver) queryProfiles(p graphql.ResolveParams) (interface{}, error) {
	profiles, err := r.store.Profiles.FindMany(p.Context)
	if err != nil {
		return nil, storageError("graph.Query.profiles", err)
	}
	return listOf(profiles), nil
}

func (r *resolver) queryMemberTypes(p graphql.ResolveParams) (interface{}, error) {
	memberTypes, err := r.store.MemberTypes.FindMany(p.Context)
	if err != nil {
		return nil, storageError("graph.Query.memberTypes", err)
	}
	return listOf(memberTypes), nil
}

func (r *resolver) queryUser(p graphql.ResolveParams) (interface{}, error) {
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(string)
	return loaders.User(p.Context, id), nil
}

func (r *resolver) queryPost(p graphql.ResolveParams) (interface{}, error) {
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(string)
	return loaders.Post(p.Context, id), nil
}

func (r *resolver) queryProfile(p graphql.ResolveParams) (interface{}, error) {
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(string)
	return loaders.Profile(p.Context, id), nil
}

func (r *resolver) queryMemberType(p graphql.ResolveParams) (interface{}, error) {
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(model.MemberTypeID)
	return loaders.MemberType(p.Context, id), nil
}

//===----------------------------------------------------------------------------------------====//
// User
//===----------------------------------------------------------------------------------------====//

// userSubscribedToUser resolves each subscription separately so that a dangling id nulls only its
// own position in the list.
func (r *resolver) userSubscribedToUser(p graphql.ResolveParams) (interface{}, error) {
	user, ok := p.Source.(*model.User)
	if !ok {
		return nil, sourceError("User", p.Source)
	}
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	return listOf(loaders.UserList(p.Context, user.SubscribedToUserIDs)), nil
}

func (r *resolver) userUserSubscribedTo(p graphql.ResolveParams) (interface{}, error) {
	user, ok := p.Source.(*model.User)
	if !ok {
		return nil, sourceError("User", p.Source)
	}
	users, err := r.store.Users.FindMany(p.Context, store.InArray("subscribedToUserIds", user.ID))
	if err != nil {
		return nil, storageError("graph.User.userSubscribedTo", err)
	}
	return listOf(users), nil
}

func (r *resolver) userProfile(p graphql.ResolveParams) (interface{}, error) {
	user, ok := p.Source.(*model.User)
	if !ok {
		return nil, sourceError("User", p.Source)
	}
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	return loaders.ProfileByUser(p.Context, user.ID), nil
}

func (r *resolver) userPosts(p graphql.ResolveParams) (interface{}, error) {
	user, ok := p.Source.(*model.User)
	if !ok {
		return nil, sourceError("User", p.Source)
	}
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	return loaders.PostsByUser(p.Context, user.ID), nil
}

// userMemberType resolves the member type of the user's profile. It is null if the user doesn't
// have a profile.
func (r *resolver) userMemberType(p graphql.ResolveParams) (interface{}, error) {
	user, ok := p.Source.(*model.User)
	if !ok {
		return nil, sourceError("User", p.Source)
	}
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}

	return loaders.MemberTypeByUser(p.Context, user.ID), nil
}

//===----------------------------------------------------------------------------------------====//
// Post
//===----------------------------------------------------------------------------------------====//

func (r *resolver) postUser(p graphql.ResolveParams) (interface{}, error) {
	post, ok := p.Source.(*model.Post)
	if !ok {
		return nil, sourceError("Post", p.Source)
	}
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	return loaders.User(p.Context, post.UserID), nil
}

//===----------------------------------------------------------------------------------------====//
// Profile
//===----------------------------------------------------------------------------------------====//

func (r *resolver) profileMemberType(p graphql.ResolveParams) (interface{}, error) {
	profile, ok := p.Source.(*model.Profile)
	if !ok {
		return nil, sourceError("Profile", p.Source)
	}
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	return loaders.MemberType(p.Context, profile.MemberTypeID), nil
}

func (r *resolver) profileUser(p graphql.ResolveParams) (interface{}, error) {
	profile, ok := p.Source.(*model.Profile)
	if !ok {
		return nil, sourceError("Profile", p.Source)
	}
	loaders, err := loadersOf(p)
	if err != nil {
		return nil, err
	}
	return loaders.User(p.Context, profile.UserID), nil
}

//===----------------------------------------------------------------------------------------====//
// MemberType
//===----------------------------------------------------------------------------------------====//

func (r *resolver) memberTypeProfiles(p graphql.ResolveParams) (interface{}, error) {
	memberType, ok := p.Source.(*model.MemberType)
	if !ok {
		return nil, sourceError("MemberType", p.Source)
	}
	profiles, err := r.store.Profiles.FindMany(p.Context, store.Equals("memberTypeId", memberType.ID))
	if err != nil {
		return nil, storageError("graph.MemberType.profiles", err)
	}
	return listOf(profiles), nil
}

//===----------------------------------------------------------------------------------------====//
// Mutation
//===----------------------------------------------------------------------------------------====//

// inputOf returns the "input" argument of a mutation.
func inputOf(p graphql.ResolveParams) map[string]interface{} {
	input, _ := p.Args["input"].(map[string]interface{})
	return input
}

func stringOf(input map[string]interface{}, key string) string {
	s, _ := input[key].(string)
	return s
}

func intOf(input map[string]interface{}, key string) int {
	n, _ := input[key].(int)
	return n
}

// optionalString returns nil if the key is absent or null.
func optionalString(input map[string]interface{}, key string) *string {
	s, ok := input[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// optionalInt returns nil if the key is absent or null.
func optionalInt(input map[string]interface{}, key string) *int {
	n, ok := input[key].(int)
	if !ok {
		return nil
	}
	return &n
}

// Mutation resolvers return a nil interface on failure so graphql-go reports the error instead of
// completing a typed nil.

func (r *resolver) createUser(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	user, err := r.mutator.CreateUser(p.Context, CreateUserInput{
		FirstName: stringOf(input, "firstName"),
		LastName:  stringOf(input, "lastName"),
		Email:     stringOf(input, "email"),
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *resolver) updateUser(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	user, err := r.mutator.UpdateUser(p.Context, stringOf(input, "id"), model.UserPatch{
		FirstName: optionalString(input, "firstName"),
		LastName:  optionalString(input, "lastName"),
		Email:     optionalString(input, "email"),
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *resolver) deleteUser(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	user, err := r.mutator.DeleteUser(p.Context, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *resolver) subscribeUser(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	user, err := r.mutator.Subscribe(p.Context, stringOf(input, "id"), stringOf(input, "userId"))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *resolver) unsubscribeUser(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	user, err := r.mutator.Unsubscribe(p.Context, stringOf(input, "id"), stringOf(input, "userId"))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *resolver) createPost(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	post, err := r.mutator.CreatePost(p.Context, CreatePostInput{
		UserID:  stringOf(input, "userId"),
		Title:   stringOf(input, "title"),
		Content: stringOf(input, "content"),
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *resolver) updatePost(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	post, err := r.mutator.UpdatePost(p.Context, stringOf(input, "id"), model.PostPatch{
		Title:   optionalString(input, "title"),
		Content: optionalString(input, "content"),
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *resolver) deletePost(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	post, err := r.mutator.DeletePost(p.Context, id)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *resolver) createProfile(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	memberTypeID, _ := input["memberTypeId"].(model.MemberTypeID)
	profile, err := r.mutator.CreateProfile(p.Context, CreateProfileInput{
		UserID:       stringOf(input, "userId"),
		Avatar:       stringOf(input, "avatar"),
		Sex:          stringOf(input, "sex"),
		Birthday:     intOf(input, "birthday"),
		Country:      stringOf(input, "country"),
		Street:       stringOf(input, "street"),
		City:         stringOf(input, "city"),
		MemberTypeID: memberTypeID,
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *resolver) updateProfile(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	patch := model.ProfilePatch{
		Avatar:   optionalString(input, "avatar"),
		Sex:      optionalString(input, "sex"),
		Birthday: optionalInt(input, "birthday"),
		Country:  optionalString(input, "country"),
		Street:   optionalString(input, "street"),
		City:     optionalString(input, "city"),
	}
	if memberTypeID, ok := input["memberTypeId"].(model.MemberTypeID); ok {
		patch.MemberTypeID = &memberTypeID
	}

	profile, err := r.mutator.UpdateProfile(p.Context, stringOf(input, "id"), patch)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *resolver) deleteProfile(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	profile, err := r.mutator.DeleteProfile(p.Context, id)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *resolver) updateMemberType(p graphql.ResolveParams) (interface{}, error) {
	input := inputOf(p)
	id, _ := input["id"].(model.MemberTypeID)
	memberType, err := r.mutator.UpdateMemberType(p.Context, id, model.MemberTypePatch{
		Discount:        optionalInt(input, "discount"),
		MonthPostsLimit: optionalInt(input, "monthPostsLimit"),
	})
	if err != nil {
		return nil, err
	}
	return memberType, nil
}
