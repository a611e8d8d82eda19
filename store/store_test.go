package store

import "testing"

type counterAction struct {
	delta int
}

func reduceCounter(prev int, a counterAction) int {
	return prev + a.delta
}

func TestDispatchAppliesReducer(t *testing.T) {
	s := New(0, reduceCounter)

	s.Dispatch(counterAction{delta: 2})
	s.Dispatch(counterAction{delta: 3})

	if s.GetState() != 5 {
		t.Errorf("Expected state 5, got %d", s.GetState())
	}
}

func TestListenersSeePrevAndNext(t *testing.T) {
	s := New(1, reduceCounter)

	var seen [][2]int
	s.Subscribe(func(prev, next int) {
		seen = append(seen, [2]int{prev, next})
	})

	s.Dispatch(counterAction{delta: 1})
	s.Dispatch(counterAction{delta: 10})

	if len(seen) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(seen))
	}
	if seen[0] != [2]int{1, 2} || seen[1] != [2]int{2, 12} {
		t.Errorf("Unexpected transitions %v", seen)
	}
}

func TestListenerMayDispatch(t *testing.T) {
	s := New(0, reduceCounter)

	s.Subscribe(func(prev, next int) {
		if next == 1 {
			s.Dispatch(counterAction{delta: 100})
		}
	})

	s.Dispatch(counterAction{delta: 1})

	if s.GetState() != 101 {
		t.Errorf("Expected nested dispatch to apply, got %d", s.GetState())
	}
}

func TestNestedDispatchKeepsListenersInOrder(t *testing.T) {
	s := New(0, reduceCounter)

	s.Subscribe(func(prev, next int) {
		if next == 1 {
			s.Dispatch(counterAction{delta: 10})
		}
	})
	var seen [][2]int
	s.Subscribe(func(prev, next int) {
		seen = append(seen, [2]int{prev, next})
	})

	s.Dispatch(counterAction{delta: 1})

	if s.GetState() != 11 {
		t.Fatalf("Expected state 11, got %d", s.GetState())
	}
	if len(seen) != 2 || seen[0] != [2]int{0, 1} || seen[1] != [2]int{1, 11} {
		t.Errorf("Expected [[0 1] [1 11]], got %v", seen)
	}
	if last := seen[len(seen)-1][1]; last != s.GetState() {
		t.Errorf("Expected the last next to be the current state %d, got %d", s.GetState(), last)
	}
}

func TestNestedDispatchRunsAfterTheCurrentRound(t *testing.T) {
	s := New(0, reduceCounter)

	var order []string
	s.Subscribe(func(prev, next int) {
		order = append(order, "first")
		if next == 1 {
			s.Dispatch(counterAction{delta: 1})
			if s.GetState() != 1 {
				t.Errorf("Expected the nested action to wait for the round, got %d", s.GetState())
			}
		}
	})
	s.Subscribe(func(prev, next int) { order = append(order, "second") })

	s.Dispatch(counterAction{delta: 1})

	want := []string{"first", "second", "first", "second"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, order)
			break
		}
	}
}

func TestDispatchRecoversFromListenerPanic(t *testing.T) {
	s := New(0, reduceCounter)

	boom := true
	s.Subscribe(func(prev, next int) {
		if boom {
			boom = false
			panic("listener failed")
		}
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Expected the panic to reach the caller")
			}
		}()
		s.Dispatch(counterAction{delta: 1})
	}()

	s.Dispatch(counterAction{delta: 1})
	if s.GetState() != 2 {
		t.Errorf("Expected the store to keep working after a panic, got %d", s.GetState())
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New(0, reduceCounter)

	calls := 0
	unsubscribe := s.Subscribe(func(prev, next int) { calls++ })
	other := 0
	s.Subscribe(func(prev, next int) { other++ })

	s.Dispatch(counterAction{delta: 1})
	unsubscribe()
	unsubscribe()
	s.Dispatch(counterAction{delta: 1})

	if calls != 1 {
		t.Errorf("Expected 1 call before unsubscribe, got %d", calls)
	}
	if other != 2 {
		t.Errorf("Expected remaining listener to see 2 calls, got %d", other)
	}
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	s := New(0, reduceCounter)

	var order []string
	s.Subscribe(func(prev, next int) { order = append(order, "first") })
	s.Subscribe(func(prev, next int) { order = append(order, "second") })

	s.Dispatch(counterAction{delta: 1})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("Unexpected listener order %v", order)
	}
}
