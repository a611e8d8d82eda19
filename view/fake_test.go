package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/state"
)

// fakeBackend answers through the optional hooks and counts every call.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	checkToken   func(token string) (bool, error)
	login        func(username, password string) (*domain.User, error)
	getPost      func(id string) (*domain.Post, error)
	createPost   func(post domain.SavePost) (string, error)
	editPost     func(id string, edit domain.SavePost) (*domain.Post, error)
	deletePost   func(id, token string) (string, error)
	profile      func(username, token string) (domain.ProfileSummary, error)
	profilePosts func(username string) ([]domain.Post, error)
	followers    func(username string) ([]domain.User, error)
	following    func(username string) ([]domain.User, error)
	homeFeed     func(token string) ([]domain.Post, error)
	search       func(term string) ([]domain.Post, error)
}

func (f *fakeBackend) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeBackend) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) CheckToken(ctx context.Context, token string) (bool, error) {
	f.count("checkToken")
	if f.checkToken == nil {
		return true, nil
	}
	return f.checkToken(token)
}

func (f *fakeBackend) Login(ctx context.Context, username string, password string) (*domain.User, error) {
	f.count("login")
	if f.login == nil {
		return nil, nil
	}
	return f.login(username, password)
}

func (f *fakeBackend) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	f.count("getPost")
	if f.getPost == nil {
		return nil, nil
	}
	return f.getPost(id)
}

func (f *fakeBackend) CreatePost(ctx context.Context, post domain.SavePost) (string, error) {
	f.count("createPost")
	if f.createPost == nil {
		return "", nil
	}
	return f.createPost(post)
}

func (f *fakeBackend) EditPost(ctx context.Context, id string, edit domain.SavePost) (*domain.Post, error) {
	f.count("editPost")
	if f.editPost == nil {
		return &domain.Post{Id: id, Title: edit.Title, Body: edit.Body}, nil
	}
	return f.editPost(id, edit)
}

func (f *fakeBackend) DeletePost(ctx context.Context, id string, token string) (string, error) {
	f.count("deletePost")
	if f.deletePost == nil {
		return "Success", nil
	}
	return f.deletePost(id, token)
}

func (f *fakeBackend) Profile(ctx context.Context, username string, token string) (domain.ProfileSummary, error) {
	f.count("profile")
	if f.profile == nil {
		return domain.ProfileSummary{ProfileUsername: username}, nil
	}
	return f.profile(username, token)
}

func (f *fakeBackend) ProfilePosts(ctx context.Context, username string) ([]domain.Post, error) {
	f.count("profilePosts")
	if f.profilePosts == nil {
		return []domain.Post{}, nil
	}
	return f.profilePosts(username)
}

func (f *fakeBackend) Followers(ctx context.Context, username string) ([]domain.User, error) {
	f.count("followers")
	if f.followers == nil {
		return []domain.User{}, nil
	}
	return f.followers(username)
}

func (f *fakeBackend) Following(ctx context.Context, username string) ([]domain.User, error) {
	f.count("following")
	if f.following == nil {
		return []domain.User{}, nil
	}
	return f.following(username)
}

func (f *fakeBackend) HomeFeed(ctx context.Context, token string) ([]domain.Post, error) {
	f.count("homeFeed")
	if f.homeFeed == nil {
		return []domain.Post{}, nil
	}
	return f.homeFeed(token)
}

func (f *fakeBackend) Search(ctx context.Context, term string) ([]domain.Post, error) {
	f.count("search")
	if f.search == nil {
		return []domain.Post{}, nil
	}
	return f.search(term)
}

type recordingNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNav) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNav) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// newTestEnv returns an env logged in as "al".
func newTestEnv(t *testing.T, backend Backend) (*Env, *recordingNav) {
	t.Helper()
	loop := request.NewLoop()
	t.Cleanup(loop.Close)

	nav := &recordingNav{}
	global := state.NewGlobal(state.InitialState(&domain.Session{
		Token:    "tok",
		Username: "al",
		Avatar:   "https://example.com/al.png",
	}))
	return &Env{Loop: loop, Global: global, Backend: backend, Nav: nav}, nav
}

// onLoop runs fn on the env's loop and waits for it.
func onLoop(t *testing.T, env *Env, fn func()) {
	t.Helper()
	if !env.Loop.Do(fn) {
		t.Fatal("loop is closed")
	}
}

func waitDone(t *testing.T, h *request.Handle) {
	t.Helper()
	if h == nil {
		t.Fatal("Expected a request handle, got nil")
	}
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("request did not settle")
	}
}

func flashes(env *Env) []string {
	return env.Global.GetState().FlashMessages
}
