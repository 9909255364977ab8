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
	"github.com/botobag/socialgraph/model"

	"github.com/graphql-go/graphql"
)

// newSchema builds the schema served by an Executor. Every field of an object type resolves with a
// named method of r.
func newSchema(r *resolver) (graphql.Schema, error) {
	var (
		userType       *graphql.Object
		postType       *graphql.Object
		profileType    *graphql.Object
		memberTypeType *graphql.Object
	)

	memberTypeIDEnum := graphql.NewEnum(graphql.EnumConfig{
		Name:        "MemberTypeId",
		Description: "Membership level",
		Values: graphql.EnumValueConfigMap{
			string(model.MemberTypeBasic): &graphql.EnumValueConfig{
				Value: model.MemberTypeBasic,
			},
			string(model.MemberTypeBusiness): &graphql.EnumValueConfig{
				Value: model.MemberTypeBusiness,
			},
		},
	})

	userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.ID),
					Resolve: fieldOf("User", func(u *model.User) interface{} { return u.ID }),
				},
				"firstName": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("User", func(u *model.User) interface{} { return u.FirstName }),
				},
				"lastName": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("User", func(u *model.User) interface{} { return u.LastName }),
				},
				"email": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("User", func(u *model.User) interface{} { return u.Email }),
				},
				"subscribedToUserIds": &graphql.Field{
					Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID))),
					Resolve: fieldOf("User", func(u *model.User) interface{} {
						if u.SubscribedToUserIDs == nil {
							return []string{}
						}
						return u.SubscribedToUserIDs
					}),
				},
				"subscribedToUser": &graphql.Field{
					Type:        graphql.NewList(userType),
					Description: "Users this user is subscribed to",
					Resolve:     r.userSubscribedToUser,
				},
				"userSubscribedTo": &graphql.Field{
					Type:        graphql.NewList(userType),
					Description: "Users whose subscriptions contain this user",
					Resolve:     r.userUserSubscribedTo,
				},
				"profile": &graphql.Field{
					Type:    profileType,
					Resolve: r.userProfile,
				},
				"posts": &graphql.Field{
					Type:    graphql.NewList(graphql.NewNonNull(postType)),
					Resolve: r.userPosts,
				},
				"memberType": &graphql.Field{
					Type:    memberTypeType,
					Resolve: r.userMemberType,
				},
			}
		}),
	})

	postType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.ID),
					Resolve: fieldOf("Post", func(p *model.Post) interface{} { return p.ID }),
				},
				"userId": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.ID),
					Resolve: fieldOf("Post", func(p *model.Post) interface{} { return p.UserID }),
				},
				"title": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("Post", func(p *model.Post) interface{} { return p.Title }),
				},
				"content": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("Post", func(p *model.Post) interface{} { return p.Content }),
				},
				"user": &graphql.Field{
					Type:    userType,
					Resolve: r.postUser,
				},
			}
		}),
	})

	profileType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Profile",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.ID),
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.ID }),
				},
				"userId": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.ID),
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.UserID }),
				},
				"avatar": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.Avatar }),
				},
				"sex": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.Sex }),
				},
				"birthday": &graphql.Field{
					Type:    graphql.Int,
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.Birthday }),
				},
				"country": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.Country }),
				},
				"street": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.Street }),
				},
				"city": &graphql.Field{
					Type:    graphql.String,
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.City }),
				},
				"memberTypeId": &graphql.Field{
					Type:    graphql.NewNonNull(memberTypeIDEnum),
					Resolve: fieldOf("Profile", func(p *model.Profile) interface{} { return p.MemberTypeID }),
				},
				"memberType": &graphql.Field{
					Type:    memberTypeType,
					Resolve: r.profileMemberType,
				},
				"user": &graphql.Field{
					Type:    userType,
					Resolve: r.profileUser,
				},
			}
		}),
	})

	memberTypeType = graphql.NewObject(graphql.ObjectConfig{
		Name: "MemberType",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type:    graphql.NewNonNull(memberTypeIDEnum),
					Resolve: fieldOf("MemberType", func(m *model.MemberType) interface{} { return m.ID }),
				},
				"discount": &graphql.Field{
					Type:    graphql.Int,
					Resolve: fieldOf("MemberType", func(m *model.MemberType) interface{} { return m.Discount }),
				},
				"monthPostsLimit": &graphql.Field{
					Type:    graphql.Int,
					Resolve: fieldOf("MemberType", func(m *model.MemberType) interface{} { return m.MonthPostsLimit }),
				},
				"profiles": &graphql.Field{
					Type:    graphql.NewList(graphql.NewNonNull(profileType)),
					Resolve: r.memberTypeProfiles,
				},
			}
		}),
	})

	idArgs := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{
			Type: graphql.NewNonNull(graphql.ID),
		},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Resolve: r.queryUsers,
			},
			"posts": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
				Resolve: r.queryPosts,
			},
			"profiles": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(profileType))),
				Resolve: r.queryProfiles,
			},
			"memberTypes": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(memberTypeType))),
				Resolve: r.queryMemberTypes,
			},
			"user": &graphql.Field{
				Type:    userType,
				Args:    idArgs,
				Resolve: r.queryUser,
			},
			"post": &graphql.Field{
				Type:    postType,
				Args:    idArgs,
				Resolve: r.queryPost,
			},
			"profile": &graphql.Field{
				Type:    profileType,
				Args:    idArgs,
				Resolve: r.queryProfile,
			},
			"memberType": &graphql.Field{
				Type: memberTypeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(memberTypeIDEnum),
					},
				},
				Resolve: r.queryMemberType,
			},
		},
	})

	inputArgs := func(name string, fields graphql.InputObjectConfigFieldMap) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewInputObject(graphql.InputObjectConfig{
					Name:   name,
					Fields: fields,
				})),
			},
		}
	}

	required := func(t graphql.Input) *graphql.InputObjectFieldConfig {
		return &graphql.InputObjectFieldConfig{
			Type: graphql.NewNonNull(t),
		}
	}

	optional := func(t graphql.Input) *graphql.InputObjectFieldConfig {
		return &graphql.InputObjectFieldConfig{
			Type: t,
		}
	}

	subscriptionFields := graphql.InputObjectConfigFieldMap{
		"id":     required(graphql.ID),
		"userId": required(graphql.ID),
	}

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: userType,
				Args: inputArgs("CreateUserInput", graphql.InputObjectConfigFieldMap{
					"firstName": required(graphql.String),
					"lastName":  required(graphql.String),
					"email":     required(graphql.String),
				}),
				Resolve: r.createUser,
			},
			"updateUser": &graphql.Field{
				Type: userType,
				Args: inputArgs("UpdateUserInput", graphql.InputObjectConfigFieldMap{
					"id":        required(graphql.ID),
					"firstName": optional(graphql.String),
					"lastName":  optional(graphql.String),
					"email":     optional(graphql.String),
				}),
				Resolve: r.updateUser,
			},
			"deleteUser": &graphql.Field{
				Type:    userType,
				Args:    idArgs,
				Resolve: r.deleteUser,
			},
			"subscribeUser": &graphql.Field{
				Type:    userType,
				Args:    inputArgs("SubscribeUserInput", subscriptionFields),
				Resolve: r.subscribeUser,
			},
			"unsubscribeUser": &graphql.Field{
				Type:    userType,
				Args:    inputArgs("UnsubscribeUserInput", subscriptionFields),
				Resolve: r.unsubscribeUser,
			},
			"createPost": &graphql.Field{
				Type: postType,
				Args: inputArgs("CreatePostInput", graphql.InputObjectConfigFieldMap{
					"userId":  required(graphql.ID),
					"title":   required(graphql.String),
					"content": required(graphql.String),
				}),
				Resolve: r.createPost,
			},
			"updatePost": &graphql.Field{
				Type: postType,
				Args: inputArgs("UpdatePostInput", graphql.InputObjectConfigFieldMap{
					"id":      required(graphql.ID),
					"title":   optional(graphql.String),
					"content": optional(graphql.String),
				}),
				Resolve: r.updatePost,
			},
			"deletePost": &graphql.Field{
				Type:    postType,
				Args:    idArgs,
				Resolve: r.deletePost,
			},
			"createProfile": &graphql.Field{
				Type: profileType,
				Args: inputArgs("CreateProfileInput", graphql.InputObjectConfigFieldMap{
					"userId":       required(graphql.ID),
					"avatar":       required(graphql.String),
					"sex":          required(graphql.String),
					"birthday":     required(graphql.Int),
					"country":      required(graphql.String),
					"street":       required(graphql.String),
					"city":         required(graphql.String),
					"memberTypeId": required(memberTypeIDEnum),
				}),
				Resolve: r.createProfile,
			},
			"updateProfile": &graphql.Field{
				Type: profileType,
				Args: inputArgs("UpdateProfileInput", graphql.InputObjectConfigFieldMap{
					"id":           required(graphql.ID),
					"avatar":       optional(graphql.String),
					"sex":          optional(graphql.String),
					"birthday":     optional(graphql.Int),
					"country":      optional(graphql.String),
					"street":       optional(graphql.String),
					"city":         optional(graphql.String),
					"memberTypeId": optional(memberTypeIDEnum),
				}),
				Resolve: r.updateProfile,
			},
			"deleteProfile": &graphql.Field{
				Type:    profileType,
				Args:    idArgs,
				Resolve: r.deleteProfile,
			},
			"updateMemberType": &graphql.Field{
				Type: memberTypeType,
				Args: inputArgs("UpdateMemberTypeInput", graphql.InputObjectConfigFieldMap{
					"id":              required(memberTypeIDEnum),
					"discount":        optional(graphql.Int),
					"monthPostsLimit": optional(graphql.Int),
				}),
				Resolve: r.updateMemberType,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
