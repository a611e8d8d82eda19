package request

import (
	"fmt"
	"sync"
)

// Keyed binds a view to its dependency key (a post id, a username). Every
// key gets a fresh Controller; rebinding closes the previous one so results
// for the old key are never applied.
type Keyed struct {
	loop *Loop
	name string

	mu      sync.Mutex
	key     string
	bound   bool
	closed  bool
	current *Controller
}

func NewKeyed(loop *Loop, name string) *Keyed {
	return &Keyed{loop: loop, name: name}
}

// Bind switches to key. It returns false when key is already bound or the
// scope was closed.
func (k *Keyed) Bind(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed || (k.bound && k.key == key) {
		return false
	}
	if k.current != nil {
		k.current.Close()
	}
	k.key = key
	k.bound = true
	k.current = NewController(k.loop, fmt.Sprintf("%s[%s]", k.name, key))
	return true
}

func (k *Keyed) Key() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.key
}

// Controller returns the controller for the bound key, or nil before the
// first Bind.
func (k *Keyed) Controller() *Controller {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

// Close ends the scope for good.
func (k *Keyed) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	if k.current != nil {
		k.current.Close()
	}
}
