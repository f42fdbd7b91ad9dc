package connectivity

import (
	"fmt"
	"sync"
	"time"
)

// DefaultFailureThreshold is how many consecutive failed probes mark the
// network offline.
const DefaultFailureThreshold = 2

const subscriberBuffer = 4

// Event is an online/offline transition.
type Event struct {
	Online bool
	At     time.Time
}

// Snapshot is a point-in-time view of the signal.
type Snapshot struct {
	Online              bool
	ConsecutiveFailures int
	LastChecked         time.Time
	LastChanged         time.Time
	LastError           error
}

// Signal mirrors network connectivity and notifies subscribers on every
// transition. The zero value is not usable; call NewSignal.
type Signal struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	threshold int
	subs      map[int]chan Event
	nextID    int
	now       func() time.Time
}

// NewSignal returns a signal that starts online. A threshold below one uses
// DefaultFailureThreshold.
func NewSignal(threshold int) *Signal {
	if threshold < 1 {
		threshold = DefaultFailureThreshold
	}
	return &Signal{
		snapshot:  Snapshot{Online: true},
		threshold: threshold,
		subs:      make(map[int]chan Event),
		now:       time.Now,
	}
}

// Online reports the current state.
func (s *Signal) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Online
}

// Snapshot returns a copy of the current state.
func (s *Signal) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Subscribe returns a channel of transitions and a func that closes it.
// A slow subscriber loses the oldest pending events, never the latest one.
func (s *Signal) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// Set forces the state and reports whether it changed.
func (s *Signal) Set(online bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if online {
		s.snapshot.ConsecutiveFailures = 0
		s.snapshot.LastError = nil
	}
	return s.setLocked(online)
}

// Observe records the outcome of a reachability probe. One success brings the
// signal online; threshold consecutive failures take it offline. It returns
// the emitted event, if any.
func (s *Signal) Observe(err error) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastChecked = s.now()
	if err == nil {
		s.snapshot.ConsecutiveFailures = 0
		s.snapshot.LastError = nil
		if s.setLocked(true) {
			return Event{Online: true, At: s.snapshot.LastChanged}, true
		}
		return Event{}, false
	}

	s.snapshot.ConsecutiveFailures++
	s.snapshot.LastError = err
	if s.snapshot.ConsecutiveFailures >= s.threshold && s.setLocked(false) {
		return Event{Online: false, At: s.snapshot.LastChanged}, true
	}
	return Event{}, false
}

func (s *Signal) setLocked(online bool) bool {
	if s.snapshot.Online == online {
		return false
	}
	s.snapshot.Online = online
	s.snapshot.LastChanged = s.now()

	ev := Event{Online: online, At: s.snapshot.LastChanged}
	for _, ch := range s.subs {
		deliver(ch, ev)
	}
	return true
}

// deliver never blocks; only setLocked sends, so after dropping the oldest
// event the second send always has room.
func deliver(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
