package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/logging"
)

// newStore returns a hydrated store holding pair (nil for logged out).
func newStore(t *testing.T, pair *session.Pair) (*session.Store, *fakeMirror) {
	t.Helper()
	m := &fakeMirror{}
	s := session.NewStore(m, logging.Nop())
	s.Transition(session.Hydrated{Restored: pair})
	return s, m
}

type fakeMirror struct {
	mu   sync.Mutex
	last string
}

func (m *fakeMirror) Sync(access string) {
	m.mu.Lock()
	m.last = access
	m.mu.Unlock()
}

func (m *fakeMirror) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// fakeRefresher blocks every call until release is closed (when set) and
// then returns pair/err.
type fakeRefresher struct {
	calls   atomic.Int32
	release chan struct{}
	pair    session.Pair
	err     error
	onCall  func(refresh string)
	panics  bool
}

func (f *fakeRefresher) Refresh(ctx context.Context, refresh string) (session.Pair, error) {
	f.calls.Add(1)
	if f.onCall != nil {
		f.onCall(refresh)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return session.Pair{}, ctx.Err()
		}
	}
	if f.panics {
		panic("refresher exploded")
	}
	return f.pair, f.err
}
