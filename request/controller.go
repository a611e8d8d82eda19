package request

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/deemkeen/postbox/util"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Controller owns at most one outstanding request for one view scope.
// Issuing a new request supersedes the previous one.
type Controller struct {
	loop *Loop
	name string
	id   uuid.UUID
	log  *logrus.Entry

	mu         sync.Mutex
	generation uint64
	current    *Handle
	closed     bool
}

func NewController(loop *Loop, name string) *Controller {
	id := uuid.New()
	return &Controller{
		loop: loop,
		name: name,
		id:   id,
		log: util.NewLogger("request").WithFields(logrus.Fields{
			"controller": name,
			"scope":      id.String(),
		}),
	}
}

func (c *Controller) Name() string {
	return c.name
}

// Cancel cancels the outstanding request, if any. The controller stays
// usable.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()

	if cur != nil {
		cur.Cancel()
	}
}

// Close cancels the outstanding request and refuses new ones. Use it when
// the issuing scope ends.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	cur := c.current
	c.mu.Unlock()

	if cur != nil {
		cur.Cancel()
	}
}

func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Pending reports whether a request is in flight and not cancelled.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	return cur != nil && !cur.Cancelled() && !cur.Settled()
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.generation == gen
}

// Handle is the cancellation token of one issued request.
type Handle struct {
	requestId ulid.ULID
	gen       uint64
	cancelCtx context.CancelFunc
	log       *logrus.Entry

	cancelled atomic.Bool
	settled   atomic.Bool
	done      chan struct{}
}

// Cancel discards the result of the request. It is idempotent.
func (h *Handle) Cancel() {
	if h.cancelled.Swap(true) {
		return
	}
	h.cancelCtx()
	if !h.settled.Load() {
		h.log.Debug("request cancelled")
	}
}

func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Settled reports whether the result was applied or discarded on the loop.
func (h *Handle) Settled() bool {
	return h.settled.Load()
}

// Done is closed once the continuation has run or been discarded.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) RequestId() string {
	return h.requestId.String()
}

func closedHandle(c *Controller) *Handle {
	h := &Handle{
		requestId: ulid.Make(),
		cancelCtx: func() {},
		log:       c.log,
		done:      make(chan struct{}),
	}
	h.cancelled.Store(true)
	h.settled.Store(true)
	close(h.done)
	return h
}

// Issue runs fn on its own goroutine and applies onSuccess or onFailure on
// the loop, but only while h is still the controller's live request. A
// cancelled, superseded or closed scope never sees its callbacks run.
// Failures other than cancellation are logged before onFailure is called;
// either callback may be nil.
func Issue[T any](c *Controller, fn func(ctx context.Context) (T, error), onSuccess func(T), onFailure func(error)) *Handle {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("issue on closed controller ignored")
		return closedHandle(c)
	}
	c.generation++
	gen := c.generation
	prev := c.current

	ctx, cancel := context.WithCancel(context.Background())
	requestId := ulid.Make()
	h := &Handle{
		requestId: requestId,
		gen:       gen,
		cancelCtx: cancel,
		log:       c.log.WithField("request_id", requestId.String()),
		done:      make(chan struct{}),
	}
	c.current = h
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	h.log.Debug("request issued")

	go func() {
		v, err := fn(ctx)

		posted := c.loop.Post(func() {
			defer close(h.done)
			defer cancel()
			defer h.settled.Store(true)

			if h.Cancelled() || !c.isCurrent(gen) {
				h.log.Debug("stale result discarded")
				return
			}
			if err != nil {
				if IsCancelled(err) {
					h.log.Debug("request cancelled")
					return
				}
				h.log.WithError(err).Warn("request failed")
				if onFailure != nil {
					onFailure(err)
				}
				return
			}
			if onSuccess != nil {
				onSuccess(v)
			}
		})

		if !posted {
			cancel()
			h.settled.Store(true)
			close(h.done)
		}
	}()

	return h
}

// IsCancelled reports whether err stems from a cancelled request context.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
