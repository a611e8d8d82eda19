package web

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func seeded(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	if err := SeedDemo(b); err != nil {
		t.Fatalf("SeedDemo failed: %v", err)
	}
	return b
}

func login(t *testing.T, b *Backend, username string) uuid.UUID {
	t.Helper()
	id, _, ok := b.Authenticate(username, DemoPassword)
	if !ok {
		t.Fatalf("Expected %s to authenticate", username)
	}
	return id
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	b := seeded(t)
	if _, err := b.Register("Alice", "x"); !errors.Is(err, ErrUserExists) {
		t.Errorf("Expected ErrUserExists, got %v", err)
	}
	if _, _, ok := b.Authenticate("alice", "wrong"); ok {
		t.Error("Expected a wrong password to fail")
	}
}

func TestPostOwnership(t *testing.T) {
	b := seeded(t)
	alice := login(t, b, "alice")
	bob := login(t, b, "bob")

	id, err := b.CreatePost(alice, "t", "b")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if p := b.GetPost(id, alice); p == nil || !p.IsVisitorOwner || p.Author.Username != "alice" {
		t.Errorf("Unexpected post %+v", p)
	}
	if _, err := b.EditPost(id, bob, "x", "y"); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("Expected ErrNotPermitted, got %v", err)
	}
	if err := b.DeletePost(id, bob); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("Expected ErrNotPermitted, got %v", err)
	}
	if err := b.DeletePost(id, alice); err != nil {
		t.Errorf("Expected delete to succeed, got %v", err)
	}
	if b.GetPost(id, alice) != nil {
		t.Error("Expected the post to be gone")
	}
}

func TestProfileAndLists(t *testing.T) {
	b := seeded(t)

	summary := b.Profile("alice", login(t, b, "bob"))
	if summary == nil {
		t.Fatal("Expected alice's profile")
	}
	if !summary.IsFollowing {
		t.Error("Expected bob to follow alice")
	}
	if summary.Counts.PostCount != 2 || summary.Counts.FollowerCount != 2 || summary.Counts.FollowingCount != 1 {
		t.Errorf("Unexpected counts %+v", summary.Counts)
	}
	if b.Profile("nobody", uuid.Nil) != nil {
		t.Error("Expected nil for an unknown user")
	}

	followers, _ := b.Followers("alice")
	if len(followers) != 2 || followers[0].Username != "bob" || followers[1].Username != "carol" {
		t.Errorf("Unexpected followers %+v", followers)
	}
	if _, err := b.PostsBy("nobody"); !errors.Is(err, ErrNoSuchUser) {
		t.Errorf("Expected ErrNoSuchUser, got %v", err)
	}
}

func TestHomeFeedAndSearch(t *testing.T) {
	b := seeded(t)

	feed := b.HomeFeed(login(t, b, "carol"))
	if len(feed) != 2 {
		t.Fatalf("Expected alice's 2 posts in carol's feed, got %d", len(feed))
	}
	for _, p := range feed {
		if p.Author.Username != "alice" {
			t.Errorf("Unexpected author %s in carol's feed", p.Author.Username)
		}
	}
	if feed[0].Title != "Markdown works" {
		t.Errorf("Expected newest first, got '%s'", feed[0].Title)
	}

	if got := b.Search("HOME feed"); len(got) != 1 || got[0].Author.Username != "bob" {
		t.Errorf("Unexpected search result %+v", got)
	}
	if got := b.Search("  "); len(got) != 0 {
		t.Errorf("Expected no results for a blank term, got %d", len(got))
	}
}
