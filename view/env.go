// Package view holds the per-screen state machines. Every method that
// dispatches or issues a request must run on the Env's loop.
package view

import (
	"context"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/state"
)

// Backend is the part of the REST client the views depend on.
type Backend interface {
	CheckToken(ctx context.Context, token string) (bool, error)
	Login(ctx context.Context, username string, password string) (*domain.User, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, post domain.SavePost) (string, error)
	EditPost(ctx context.Context, id string, edit domain.SavePost) (*domain.Post, error)
	DeletePost(ctx context.Context, id string, token string) (string, error)
	Profile(ctx context.Context, username string, token string) (domain.ProfileSummary, error)
	ProfilePosts(ctx context.Context, username string) ([]domain.Post, error)
	Followers(ctx context.Context, username string) ([]domain.User, error)
	Following(ctx context.Context, username string) ([]domain.User, error)
	HomeFeed(ctx context.Context, token string) ([]domain.Post, error)
	Search(ctx context.Context, term string) ([]domain.Post, error)
}

// Navigator is the routing collaborator.
type Navigator interface {
	Navigate(path string)
}

type Env struct {
	Loop    *request.Loop
	Global  *state.Global
	Backend Backend
	Nav     Navigator
}

func (e *Env) navigate(path string) {
	if e.Nav != nil {
		e.Nav.Navigate(path)
	}
}

func (e *Env) session() domain.Session {
	return e.Global.GetState().Session
}

func (e *Env) flash(msg string) {
	state.Flash(e.Global, msg)
}
