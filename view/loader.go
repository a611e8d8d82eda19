package view

import (
	"context"

	"github.com/deemkeen/postbox/api"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/store"
)

// LoaderState is one full snapshot of a remote resource bound to Key.
type LoaderState[T any] struct {
	Key       string
	IsLoading bool
	Data      T
	NotFound  bool
}

type loaderKind int

const (
	loaderFetchStarted loaderKind = iota
	loaderFetchComplete
	loaderNotFound
)

type loaderAction[T any] struct {
	kind loaderKind
	key  string
	data T
}

func reduceLoader[T any](prev LoaderState[T], a loaderAction[T]) LoaderState[T] {
	next := prev
	switch a.kind {
	case loaderFetchStarted:
		next = LoaderState[T]{Key: a.key, IsLoading: true, Data: a.data}
	case loaderFetchComplete:
		next.Data = a.data
		next.IsLoading = false
		next.NotFound = false
	case loaderNotFound:
		next.IsLoading = false
		next.NotFound = true
	}
	return next
}

// Fetcher loads the resource for key.
type Fetcher[T any] func(ctx context.Context, key string) (T, error)

// Loader is the fetch-bound state shared by every list and single-resource
// view. It holds exactly one snapshot; changing the key cancels the
// outstanding fetch so only the latest key's answer is ever applied.
type Loader[T any] struct {
	keyed   *request.Keyed
	store   *store.Store[LoaderState[T], loaderAction[T]]
	fetch   Fetcher[T]
	initial T
	isEmpty func(T) bool
}

type LoaderOption[T any] func(*Loader[T])

// WithInitial sets the data shown while loading.
func WithInitial[T any](v T) LoaderOption[T] {
	return func(l *Loader[T]) { l.initial = v }
}

// WithEmpty marks answers for which empty returns true as not found.
func WithEmpty[T any](empty func(T) bool) LoaderOption[T] {
	return func(l *Loader[T]) { l.isEmpty = empty }
}

func NewLoader[T any](loop *request.Loop, name string, fetch Fetcher[T], opts ...LoaderOption[T]) *Loader[T] {
	l := &Loader[T]{
		keyed: request.NewKeyed(loop, name),
		fetch: fetch,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.store = store.New[LoaderState[T], loaderAction[T]](
		LoaderState[T]{IsLoading: true, Data: l.initial},
		reduceLoader[T],
	)
	return l
}

func (l *Loader[T]) GetState() LoaderState[T] {
	return l.store.GetState()
}

func (l *Loader[T]) Subscribe(fn store.Listener[LoaderState[T]]) func() {
	return l.store.Subscribe(fn)
}

// SetKey mounts the loader on key. Re-setting the bound key is a no-op.
func (l *Loader[T]) SetKey(key string) *request.Handle {
	if !l.keyed.Bind(key) {
		return nil
	}
	return l.load(key)
}

// Reload fetches the bound key again, superseding any outstanding fetch.
func (l *Loader[T]) Reload() *request.Handle {
	c := l.keyed.Controller()
	if c == nil || c.Closed() {
		return nil
	}
	return l.load(l.keyed.Key())
}

// Unmount cancels the outstanding fetch and ends the scope.
func (l *Loader[T]) Unmount() {
	l.keyed.Close()
}

func (l *Loader[T]) load(key string) *request.Handle {
	l.store.Dispatch(loaderAction[T]{kind: loaderFetchStarted, key: key, data: l.initial})

	return request.Issue(l.keyed.Controller(),
		func(ctx context.Context) (T, error) {
			return l.fetch(ctx, key)
		},
		func(v T) {
			if l.isEmpty != nil && l.isEmpty(v) {
				l.store.Dispatch(loaderAction[T]{kind: loaderNotFound})
				return
			}
			l.store.Dispatch(loaderAction[T]{kind: loaderFetchComplete, data: v})
		},
		func(err error) {
			if api.Classify(err) == api.KindNotFound {
				l.store.Dispatch(loaderAction[T]{kind: loaderNotFound})
			}
		},
	)
}
