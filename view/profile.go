package view

import (
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
)

type Tab int

const (
	TabPosts Tab = iota
	TabFollowers
	TabFollowing
)

func (t Tab) String() string {
	switch t {
	case TabFollowers:
		return "followers"
	case TabFollowing:
		return "following"
	default:
		return "posts"
	}
}

// ProfilePage is the summary header plus the selected tab. Only the
// selected tab's loader is bound to the username.
type ProfilePage struct {
	Summary   *Loader[domain.ProfileSummary]
	Posts     *Loader[[]domain.Post]
	Followers *Loader[[]domain.User]
	Following *Loader[[]domain.User]

	username string
	tab      Tab
}

func NewProfilePage(env *Env) *ProfilePage {
	return &ProfilePage{
		Summary:   NewProfileSummary(env),
		Posts:     NewProfilePosts(env),
		Followers: NewFollowers(env),
		Following: NewFollowing(env),
	}
}

func (p *ProfilePage) Username() string {
	return p.username
}

func (p *ProfilePage) Tab() Tab {
	return p.tab
}

// SetUsername binds the summary and the selected tab to username.
func (p *ProfilePage) SetUsername(username string) {
	p.username = username
	p.Summary.SetKey(username)
	p.bindTab()
}

// SelectTab switches tabs. It returns the fetch handle, or nil when the
// tab already holds this user's data.
func (p *ProfilePage) SelectTab(tab Tab) *request.Handle {
	p.tab = tab
	if p.username == "" {
		return nil
	}
	return p.bindTab()
}

func (p *ProfilePage) bindTab() *request.Handle {
	switch p.tab {
	case TabFollowers:
		return p.Followers.SetKey(p.username)
	case TabFollowing:
		return p.Following.SetKey(p.username)
	default:
		return p.Posts.SetKey(p.username)
	}
}

func (p *ProfilePage) Unmount() {
	p.Summary.Unmount()
	p.Posts.Unmount()
	p.Followers.Unmount()
	p.Following.Unmount()
}
