package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/deemkeen/postbox/app"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/state"
)

// pathRecorder is the headless Navigator.
type pathRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (p *pathRecorder) Navigate(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
}

func (p *pathRecorder) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.paths) == 0 {
		return ""
	}
	return p.paths[len(p.paths)-1]
}

// run executes fn on the loop and waits for the request it returns.
func run(ctx context.Context, a *app.App, fn func() *request.Handle) error {
	var h *request.Handle
	if !a.Do(func() { h = fn() }) {
		return fmt.Errorf("app is shut down")
	}
	return wait(ctx, h)
}

func wait(ctx context.Context, h *request.Handle) error {
	if h == nil {
		return nil
	}
	select {
	case <-h.Done():
		return nil
	case <-ctx.Done():
		h.Cancel()
		return ctx.Err()
	}
}

// snapshot reads the global state after everything queued so far ran.
func snapshot(a *app.App) state.State {
	var s state.State
	a.Do(func() { s = a.Global.GetState() })
	return s
}

// lastFlash is the newest flash message, or "".
func lastFlash(s state.State) string {
	if len(s.FlashMessages) == 0 {
		return ""
	}
	return s.FlashMessages[len(s.FlashMessages)-1]
}

func closeApp(a *app.App, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
