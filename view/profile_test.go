package view

import (
	"testing"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
)

func TestProfilePageBindsSelectedTab(t *testing.T) {
	backend := &fakeBackend{}
	backend.followers = func(username string) ([]domain.User, error) {
		return []domain.User{{Username: "fan"}}, nil
	}
	env, _ := newTestEnv(t, backend)
	page := NewProfilePage(env)
	defer onLoop(t, env, page.Unmount)

	onLoop(t, env, func() { page.SetUsername("bo") })
	if page.Summary.GetState().Key != "bo" || page.Posts.GetState().Key != "bo" {
		t.Error("Expected summary and posts bound to 'bo'")
	}
	if page.Followers.GetState().Key != "" {
		t.Error("Expected followers to wait until selected")
	}

	var h *request.Handle
	onLoop(t, env, func() { h = page.SelectTab(TabFollowers) })
	waitDone(t, h)
	if page.Tab() != TabFollowers || page.Tab().String() != "followers" {
		t.Errorf("Expected followers tab, got %s", page.Tab())
	}
	if data := page.Followers.GetState().Data; len(data) != 1 || data[0].Username != "fan" {
		t.Errorf("Expected bo's follower, got %+v", data)
	}

	onLoop(t, env, func() { h = page.SelectTab(TabPosts) })
	if h != nil {
		t.Error("Expected posts for the same user not to refetch")
	}
}
