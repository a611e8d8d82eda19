package web

import (
	"crypto/md5"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	ErrUserExists   = errors.New("username already taken")
	ErrNoSuchUser   = errors.New("no such user")
	ErrNoSuchPost   = errors.New("no such post")
	ErrNotPermitted = errors.New("not permitted")
)

type account struct {
	id       uuid.UUID
	username string
	password string
	avatar   string
}

type post struct {
	id      string
	title   string
	body    string
	author  uuid.UUID
	created time.Time
}

// Backend is the in-memory data set behind the dev server.
type Backend struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*account
	byName  map[string]uuid.UUID
	posts   map[string]*post
	follows map[uuid.UUID]map[uuid.UUID]bool
	now     func() time.Time
}

func NewBackend() *Backend {
	return &Backend{
		users:   map[uuid.UUID]*account{},
		byName:  map[string]uuid.UUID{},
		posts:   map[string]*post{},
		follows: map[uuid.UUID]map[uuid.UUID]bool{},
		now:     time.Now,
	}
}

// AvatarFor returns the gravatar url for username.
func AvatarFor(username string) string {
	return fmt.Sprintf("https://gravatar.com/avatar/%x?s=128", md5.Sum([]byte(strings.ToLower(username))))
}

func (b *Backend) Register(username string, password string) (uuid.UUID, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return uuid.Nil, fmt.Errorf("username and password are required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.byName[strings.ToLower(username)]; taken {
		return uuid.Nil, ErrUserExists
	}
	acc := &account{id: uuid.New(), username: username, password: password, avatar: AvatarFor(username)}
	b.users[acc.id] = acc
	b.byName[strings.ToLower(username)] = acc.id
	return acc.id, nil
}

// Authenticate returns the account for valid credentials.
func (b *Backend) Authenticate(username string, password string) (uuid.UUID, domain.Author, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc := b.lookup(username)
	if acc == nil || acc.password != password {
		return uuid.Nil, domain.Author{}, false
	}
	return acc.id, domain.Author{Username: acc.username, Avatar: acc.avatar}, true
}

func (b *Backend) Exists(userId uuid.UUID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.users[userId]
	return ok
}

func (b *Backend) CreatePost(author uuid.UUID, title string, body string) (string, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("title and body are required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[author]; !ok {
		return "", ErrNoSuchUser
	}
	p := &post{
		id:      ulid.Make().String(),
		title:   title,
		body:    body,
		author:  author,
		created: b.now(),
	}
	b.posts[p.id] = p
	return p.id, nil
}

// GetPost returns nil when id is unknown. visitor may be uuid.Nil.
func (b *Backend) GetPost(id string, visitor uuid.UUID) *domain.Post {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.posts[id]
	if !ok {
		return nil
	}
	out := b.project(p)
	out.IsVisitorOwner = visitor != uuid.Nil && visitor == p.author
	return &out
}

func (b *Backend) EditPost(id string, editor uuid.UUID, title string, body string) (*domain.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[id]
	if !ok {
		return nil, ErrNoSuchPost
	}
	if p.author != editor {
		return nil, ErrNotPermitted
	}
	p.title = title
	p.body = body
	out := b.project(p)
	return &out, nil
}

func (b *Backend) DeletePost(id string, requester uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[id]
	if !ok {
		return ErrNoSuchPost
	}
	if p.author != requester {
		return ErrNotPermitted
	}
	delete(b.posts, id)
	return nil
}

func (b *Backend) Follow(follower uuid.UUID, username string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	target := b.lookup(username)
	if target == nil {
		return ErrNoSuchUser
	}
	if target.id == follower {
		return fmt.Errorf("cannot follow yourself")
	}
	if b.follows[follower] == nil {
		b.follows[follower] = map[uuid.UUID]bool{}
	}
	b.follows[follower][target.id] = true
	return nil
}

// Profile returns nil for an unknown user.
func (b *Backend) Profile(username string, visitor uuid.UUID) *domain.ProfileSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc := b.lookup(username)
	if acc == nil {
		return nil
	}
	return &domain.ProfileSummary{
		ProfileUsername: acc.username,
		ProfileAvatar:   acc.avatar,
		IsFollowing:     b.follows[visitor][acc.id],
		Counts: domain.Counts{
			PostCount:      len(b.postsBy(acc.id)),
			FollowerCount:  len(b.followersOf(acc.id)),
			FollowingCount: len(b.follows[acc.id]),
		},
	}
}

func (b *Backend) PostsBy(username string) ([]domain.Post, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc := b.lookup(username)
	if acc == nil {
		return nil, ErrNoSuchUser
	}
	return b.projectAll(b.postsBy(acc.id)), nil
}

func (b *Backend) Followers(username string) ([]domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc := b.lookup(username)
	if acc == nil {
		return nil, ErrNoSuchUser
	}
	return b.usersOf(b.followersOf(acc.id)), nil
}

func (b *Backend) Following(username string) ([]domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc := b.lookup(username)
	if acc == nil {
		return nil, ErrNoSuchUser
	}
	ids := make([]uuid.UUID, 0, len(b.follows[acc.id]))
	for id := range b.follows[acc.id] {
		ids = append(ids, id)
	}
	return b.usersOf(ids), nil
}

// HomeFeed lists posts by everyone userId follows, newest first.
func (b *Backend) HomeFeed(userId uuid.UUID) []domain.Post {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var found []*post
	for _, p := range b.posts {
		if b.follows[userId][p.author] {
			found = append(found, p)
		}
	}
	return b.projectAll(found)
}

// Search matches term against titles and bodies, case-insensitively.
func (b *Backend) Search(term string) []domain.Post {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []domain.Post{}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	var found []*post
	for _, p := range b.posts {
		if strings.Contains(strings.ToLower(p.title), term) || strings.Contains(strings.ToLower(p.body), term) {
			found = append(found, p)
		}
	}
	return b.projectAll(found)
}

func (b *Backend) lookup(username string) *account {
	id, ok := b.byName[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil
	}
	return b.users[id]
}

func (b *Backend) postsBy(author uuid.UUID) []*post {
	var out []*post
	for _, p := range b.posts {
		if p.author == author {
			out = append(out, p)
		}
	}
	return out
}

func (b *Backend) followersOf(target uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for follower, targets := range b.follows {
		if targets[target] {
			out = append(out, follower)
		}
	}
	return out
}

func (b *Backend) usersOf(ids []uuid.UUID) []domain.User {
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if acc, ok := b.users[id]; ok {
			out = append(out, domain.User{Username: acc.username, Avatar: acc.avatar})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (b *Backend) project(p *post) domain.Post {
	acc := b.users[p.author]
	out := domain.Post{
		Id:          p.id,
		Title:       p.title,
		Body:        p.body,
		CreatedDate: p.created,
	}
	if acc != nil {
		out.Author = domain.Author{Username: acc.username, Avatar: acc.avatar}
	}
	return out
}

// projectAll sorts newest first. ULIDs break ties in creation order.
func (b *Backend) projectAll(posts []*post) []domain.Post {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].created.Equal(posts[j].created) {
			return posts[i].id > posts[j].id
		}
		return posts[i].created.After(posts[j].created)
	})
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, b.project(p))
	}
	return out
}
