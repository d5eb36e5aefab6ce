package state

import (
	"sync"
	"testing"
)

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Initialized: "Initialized",
		Running:     "Running",
		Shutdown:    "Shutdown",
		State(42):   "Unknown",
	}

	for s, expected := range cases {
		if s.String() != expected {
			t.Fatalf("expected %s, got %s", expected, s.String())
		}
	}
}

func TestManagerState(t *testing.T) {
	var m Manager

	if m.GetState() != Initialized {
		t.Fatalf("initial state should be Initialized, not %s", m.GetState())
	}

	m.SetState(Running)
	if m.GetState() != Running {
		t.Fatalf("state should be Running, not %s", m.GetState())
	}
}

func TestGoFuncLimit(t *testing.T) {
	var m Manager

	release := make(chan struct{})
	var started sync.WaitGroup

	for i := 0; i < WGLIMIT; i++ {
		started.Add(1)
		ok := m.GoFunc(func() {
			started.Done()
			<-release
		})
		if !ok {
			t.Fatalf("goroutine %d should have been launched", i)
		}
	}
	started.Wait()

	if m.GoFunc(func() {}) {
		t.Fatal("goroutine over the limit should not have been launched")
	}

	close(release)
	m.WaitRoutines()

	if !m.GoFunc(func() {}) {
		t.Fatal("goroutine should be launched once others are done")
	}
	m.WaitRoutines()
}
