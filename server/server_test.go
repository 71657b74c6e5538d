package server

import (
	"context"
	"testing"
	"time"

	"github.com/oleworks/com-runtime/hresult"
)

type countingLocker struct {
	locks   int
	unlocks int
}

func (l *countingLocker) Lock()   { l.locks++ }
func (l *countingLocker) Unlock() { l.unlocks++ }

func TestRegistry_Membership(t *testing.T) {
	reg := NewRegistry()
	a, b := new(int), new(int)

	reg.Add(a)
	reg.Add(b)
	if reg.Count() != 2 {
		t.Fatalf("count = %d", reg.Count())
	}

	reg.Remove(a)
	if reg.Count() != 1 || reg.Empty() {
		t.Fatalf("count = %d", reg.Count())
	}
	reg.Remove(b)
	if !reg.Empty() {
		t.Fatal("should be empty")
	}
}

func TestRegistry_LockerNotifications(t *testing.T) {
	reg := NewRegistry()
	l := &countingLocker{}
	reg.SetLocker(l)

	obj := new(int)
	reg.Add(obj)
	reg.Remove(obj)
	if l.locks != 1 || l.unlocks != 1 {
		t.Fatalf("locks=%d unlocks=%d", l.locks, l.unlocks)
	}

	// Removing an absent object must not unbalance the server lock.
	reg.Remove(obj)
	if l.unlocks != 1 {
		t.Fatalf("unlocks = %d after redundant remove", l.unlocks)
	}
}

func TestInproc_CanUnloadNow(t *testing.T) {
	srv := NewInproc()
	reg := NewRegistry()
	reg.SetLocker(srv)

	// Idle: nothing holds the process.
	if hr := srv.CanUnloadNow(reg); hr != hresult.S_OK {
		t.Fatalf("idle: %s", hr)
	}

	// A live object holds it.
	obj := new(int)
	reg.Add(obj)
	if hr := srv.CanUnloadNow(reg); hr != hresult.S_FALSE {
		t.Fatalf("live object: %s", hr)
	}
	reg.Remove(obj)
	if hr := srv.CanUnloadNow(reg); hr != hresult.S_OK {
		t.Fatalf("after release: %s", hr)
	}

	// An explicit server lock holds it with no objects at all.
	srv.Lock()
	if hr := srv.CanUnloadNow(reg); hr != hresult.S_FALSE {
		t.Fatalf("locked: %s", hr)
	}
	srv.Unlock()
	if hr := srv.CanUnloadNow(reg); hr != hresult.S_OK {
		t.Fatalf("unlocked: %s", hr)
	}
}

func TestLocal_RunUntilLastRelease(t *testing.T) {
	srv := NewLocal()
	srv.Lock()
	srv.Lock()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(context.Background())
	}()

	srv.Unlock()
	select {
	case <-done:
		t.Fatal("run returned with a lock outstanding")
	case <-time.After(10 * time.Millisecond):
	}

	srv.Unlock()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not return after last release")
	}
}

func TestLocal_SignalsOnce(t *testing.T) {
	srv := NewLocal()
	srv.Lock()
	srv.Unlock()

	// Re-locking after shutdown does not reopen the channel; a second
	// zero crossing must not panic on a double close.
	srv.Lock()
	srv.Unlock()

	select {
	case <-srv.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestLocal_RunCancel(t *testing.T) {
	srv := NewLocal()
	srv.Lock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not observe cancellation")
	}
}
