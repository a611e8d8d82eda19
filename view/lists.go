package view

import (
	"context"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/util"
)

func NewProfilePosts(env *Env) *Loader[[]domain.Post] {
	return NewLoader(env.Loop, "profile-posts", env.Backend.ProfilePosts,
		WithInitial([]domain.Post{}))
}

func NewFollowers(env *Env) *Loader[[]domain.User] {
	return NewLoader(env.Loop, "followers", env.Backend.Followers,
		WithInitial([]domain.User{}))
}

func NewFollowing(env *Env) *Loader[[]domain.User] {
	return NewLoader(env.Loop, "following", env.Backend.Following,
		WithInitial([]domain.User{}))
}

// NewProfileSummary starts from the placeholder summary. The session token
// is read when the fetch is issued.
func NewProfileSummary(env *Env) *Loader[domain.ProfileSummary] {
	return NewLoader(env.Loop, "profile",
		func(ctx context.Context, username string) (domain.ProfileSummary, error) {
			return env.Backend.Profile(ctx, username, env.session().Token)
		},
		WithInitial(domain.PlaceholderProfile()))
}

// NewHomeFeed is keyed by the session username so a login as someone else
// refetches.
func NewHomeFeed(env *Env) *Loader[[]domain.Post] {
	return NewLoader(env.Loop, "home-feed",
		func(ctx context.Context, _ string) ([]domain.Post, error) {
			return env.Backend.HomeFeed(ctx, env.session().Token)
		},
		WithInitial([]domain.Post{}))
}

// NewSearch is keyed by the search term. A blank term answers with no
// results without contacting the backend.
func NewSearch(env *Env) *Loader[[]domain.Post] {
	return NewLoader(env.Loop, "search",
		func(ctx context.Context, term string) ([]domain.Post, error) {
			if util.IsBlank(term) {
				return []domain.Post{}, nil
			}
			return env.Backend.Search(ctx, term)
		},
		WithInitial([]domain.Post{}))
}
