package session

import (
	"context"
	"slices"
	"sync"

	"github.com/cryptobulldev/userdash/internal/logging"
)

// Mirror receives the access credential whenever it changes. An empty
// string means the credential is gone.
type Mirror interface {
	Sync(access string)
}

// Listener observes the state produced by a transition. Listeners run
// synchronously, in transition order, and must not call Transition on the
// same store from the calling goroutine.
type Listener func(State)

// Store is the single source of truth for the session.
//
// Transitions are serialized by mu. The mirror is synced while mu is still
// held, so readers never see a state the mirror has not caught up with.
// Notification runs under notifyMu, which is taken before mu is released;
// that keeps deliveries in transition order without blocking readers on
// slow listeners.
type Store struct {
	mu       sync.RWMutex
	state    State
	hydrated chan struct{}

	notifyMu sync.Mutex

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64

	mirror Mirror
	log    logging.Logger
}

// NewStore returns a store in the initial state: no pair, not hydrated.
// A nil mirror disables cookie projection.
func NewStore(mirror Mirror, log logging.Logger) *Store {
	if mirror == nil {
		mirror = nopMirror{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		hydrated:  make(chan struct{}),
		listeners: make(map[uint64]Listener),
		mirror:    mirror,
		log:       log.With("module", "session"),
	}
}

// Get returns a snapshot of the current state.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Transition applies ev atomically. Events that produce an empty patch are
// dropped without notifying anyone.
func (s *Store) Transition(ev Event) {
	s.TransitionIf(nil, ev)
}

// TransitionIf applies ev only when pred accepts the current state. The
// check and the update happen under one lock. A nil pred always accepts.
// It reports whether ev was applied.
func (s *Store) TransitionIf(pred func(State) bool, ev Event) bool {
	s.mu.Lock()

	prev := s.state
	if pred != nil && !pred(prev) {
		s.mu.Unlock()
		return false
	}

	patch := Reduce(prev, ev)
	if patch.Empty() {
		s.mu.Unlock()
		s.log.Debug(context.Background(), "event ignored", "event", eventName(ev))
		return false
	}

	next := patch.Apply(prev)
	s.state = next

	_, isHydrated := ev.(Hydrated)
	if prev.Access() != next.Access() || isHydrated {
		s.mirror.Sync(next.Access())
	}
	if next.Hydrated && !prev.Hydrated {
		close(s.hydrated)
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.log.Debug(context.Background(), "transition applied",
		"event", eventName(ev),
		"authenticated", next.Authenticated(),
		"hydrated", next.Hydrated,
	)

	for _, l := range s.snapshotListeners() {
		l(next)
	}
	return true
}

// Subscribe registers l and returns a function that removes it. The
// returned function is safe to call more than once.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

// WaitHydrated blocks until the HYDRATED transition has happened or ctx is
// done, and returns the state observed right after.
func (s *Store) WaitHydrated(ctx context.Context) (State, error) {
	select {
	case <-s.hydrated:
		return s.Get(), nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// snapshotListeners copies listeners in subscription order.
func (s *Store) snapshotListeners() []Listener {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

func eventName(ev Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.EventName()
}

type nopMirror struct{}

func (nopMirror) Sync(string) {}
