package connectivity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePinger struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if len(p.errs) == 0 {
		return nil
	}
	if i >= len(p.errs) {
		i = len(p.errs) - 1
	}
	return p.errs[i]
}

func (p *fakePinger) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestStartProber_MarksOfflineThenRecovers(t *testing.T) {
	down := errors.New("connection refused")
	pinger := &fakePinger{errs: []error{down, down, nil}}
	sig := NewSignal(2)
	events, unsubscribe := sig.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartProber(ctx, sig, pinger, 10*time.Millisecond, nil)

	select {
	case ev := <-events:
		if ev.Online {
			t.Fatalf("first event Online = true, want offline")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no offline event")
	}
	select {
	case ev := <-events:
		if !ev.Online {
			t.Fatalf("second event Online = false, want online")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no online event")
	}
	if pinger.Calls() < 3 {
		t.Fatalf("pinger calls = %d, want at least 3", pinger.Calls())
	}
}

func TestStartProber_StopsOnCancel(t *testing.T) {
	pinger := &fakePinger{}
	sig := NewSignal(2)

	ctx, cancel := context.WithCancel(context.Background())
	StartProber(ctx, sig, pinger, 5*time.Millisecond, nil)
	waitFor(t, func() bool { return pinger.Calls() >= 2 })

	cancel()
	time.Sleep(20 * time.Millisecond)
	settled := pinger.Calls()
	time.Sleep(50 * time.Millisecond)
	if got := pinger.Calls(); got != settled {
		t.Fatalf("pinger called %d more times after cancel", got-settled)
	}
}

func TestProbe_IgnoresResultAfterShutdown(t *testing.T) {
	sig := NewSignal(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe(ctx, sig, &fakePinger{errs: []error{context.Canceled}}, nil)
	if !sig.Online() || sig.Snapshot().ConsecutiveFailures != 0 {
		t.Fatalf("canceled probe was recorded: %+v", sig.Snapshot())
	}
}
