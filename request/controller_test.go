package request

import (
	"context"
	"errors"
	"testing"
	"time"
)

// gate is a fake request that settles only when released.
type gate struct {
	release chan struct{}
	value   string
	err     error
}

func newGate(value string) *gate {
	return &gate{release: make(chan struct{}), value: value}
}

func (g *gate) fetch(ctx context.Context) (string, error) {
	<-g.release
	return g.value, g.err
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("request did not settle")
	}
}

func TestIssueDeliversSuccessOnLoop(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()
	c := NewController(loop, "test")

	var got string
	h := Issue(c, func(ctx context.Context) (string, error) {
		return "ok", nil
	}, func(v string) { got = v }, nil)
	waitDone(t, h)

	if got != "ok" {
		t.Errorf("Expected 'ok', got '%s'", got)
	}
	if !h.Settled() {
		t.Error("Expected handle to be settled")
	}
	if c.Pending() {
		t.Error("Controller should not be pending after settle")
	}
}

func TestCancelBeforeSettleSuppressesCallbacks(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()
	c := NewController(loop, "test")

	g := newGate("late")
	called := false
	h := Issue(c, g.fetch,
		func(string) { called = true },
		func(error) { called = true })

	if !c.Pending() {
		t.Error("Controller should be pending while the request is in flight")
	}
	h.Cancel()
	h.Cancel()
	close(g.release)
	waitDone(t, h)

	if called {
		t.Error("No callback may run after Cancel")
	}
}

func TestFailureIsPassedToOnFailure(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()
	c := NewController(loop, "test")

	boom := errors.New("boom")
	var got error
	h := Issue(c, func(ctx context.Context) (string, error) {
		return "", boom
	}, func(string) { t.Error("onSuccess must not run on failure") }, func(err error) { got = err })
	waitDone(t, h)

	if !errors.Is(got, boom) {
		t.Errorf("Expected boom, got %v", got)
	}
}

func TestNilCallbacksAreAllowed(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()
	c := NewController(loop, "test")

	h := Issue(c, func(ctx context.Context) (int, error) {
		return 0, errors.New("swallowed")
	}, nil, nil)
	waitDone(t, h)
}

func TestCancelledContextErrorIsSilent(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()
	c := NewController(loop, "test")

	called := false
	h := Issue(c, func(ctx context.Context) (int, error) {
		return 0, context.Canceled
	}, nil, func(error) { called = true })
	waitDone(t, h)

	if called {
		t.Error("A cancellation error must not reach onFailure")
	}
}

func TestNewIssueSupersedesPrevious(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()
	c := NewController(loop, "test")

	old := newGate("old")
	fresh := newGate("fresh")
	var got []string

	h1 := Issue(c, old.fetch, func(v string) { got = append(got, v) }, nil)
	h2 := Issue(c, fresh.fetch, func(v string) { got = append(got, v) }, nil)

	if !h1.Cancelled() {
		t.Error("Superseded handle should be cancelled")
	}

	close(fresh.release)
	waitDone(t, h2)
	close(old.release)
	waitDone(t, h1)

	if len(got) != 1 || got[0] != "fresh" {
		t.Errorf("Expected only the fresh result, got %v", got)
	}
}

func TestContextIsCancelledWithHandle(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()
	c := NewController(loop, "test")

	started := make(chan struct{})
	h := Issue(c, func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}, nil, nil)

	<-started
	h.Cancel()
	waitDone(t, h)
}

func TestClosedControllerRefusesWork(t *testing.T) {
	loop := NewLoop()
	defer loop.Close()
	c := NewController(loop, "test")

	g := newGate("x")
	called := false
	h := Issue(c, g.fetch, func(string) { called = true }, nil)
	c.Close()
	close(g.release)
	waitDone(t, h)

	ran := false
	h2 := Issue(c, func(ctx context.Context) (string, error) {
		ran = true
		return "", nil
	}, func(string) { called = true }, nil)
	waitDone(t, h2)

	if called {
		t.Error("No callback may run on a closed controller")
	}
	if ran {
		t.Error("A closed controller must not start new requests")
	}
	if !c.Closed() {
		t.Error("Closed() should report true")
	}
}

func TestResultAfterLoopCloseIsDropped(t *testing.T) {
	loop := NewLoop()
	c := NewController(loop, "test")

	g := newGate("x")
	called := false
	h := Issue(c, g.fetch, func(string) { called = true }, nil)
	loop.Close()
	close(g.release)
	waitDone(t, h)

	if called {
		t.Error("Callbacks must not run after the loop is torn down")
	}
}
