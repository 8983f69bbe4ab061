package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/logging"
)

// DefaultRefreshTimeout bounds a refresh round trip when none is configured.
const DefaultRefreshTimeout = 15 * time.Second

// inflight is the handle of the one refresh that may run at a time. access
// and err are written before done is closed and are read-only afterwards.
type inflight struct {
	refresh string
	done    chan struct{}
	waiters int

	access string
	err    error
}

// Coordinator deduplicates refresh demand: every caller that needs a fresh
// access credential while a refresh is running shares that refresh's
// outcome instead of starting its own.
type Coordinator struct {
	store     *session.Store
	refresher Refresher
	timeout   time.Duration
	metrics   *Metrics
	log       logging.Logger

	mu      sync.Mutex
	current *inflight
}

type CoordinatorOption func(*Coordinator)

// WithRefreshTimeout bounds each refresh. Zero or negative keeps the default.
func WithRefreshTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithCoordinatorMetrics(m *Metrics) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = m }
}

func WithCoordinatorLogger(l logging.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.log = l }
}

func NewCoordinator(store *session.Store, refresher Refresher, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:     store,
		refresher: refresher,
		timeout:   DefaultRefreshTimeout,
		log:       logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("module", "refresh-coordinator")
	return c
}

// Obtain returns a fresh access credential, starting a refresh or joining
// the one in flight.
//
// The refresh runs detached from ctx: a caller that gives up stops waiting
// but the refresh still completes and updates the session for everyone
// else. On rejection the session is logged out. On transport failure it is
// left alone.
func (c *Coordinator) Obtain(ctx context.Context) (string, error) {
	c.mu.Lock()

	refresh := c.store.Get().Refresh()
	if refresh == "" {
		c.mu.Unlock()
		c.metrics.refresh(OutcomeNoCredential)
		return "", ErrNoRefreshCredential
	}

	f := c.current
	if f == nil {
		f = &inflight{refresh: refresh, done: make(chan struct{})}
		c.current = f
		go c.run(ctx, f)
	} else {
		f.waiters++
		c.metrics.join()
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.access, f.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// InFlight reports whether a refresh is currently running.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *Coordinator) joinedWaiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return 0
	}
	return c.current.waiters
}

func (c *Coordinator) waitersOf(f *inflight) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return f.waiters
}

func (c *Coordinator) run(parent context.Context, f *inflight) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.timeout)
	defer cancel()

	access, err := c.settle(ctx, f, c.call(ctx, f.refresh))

	c.mu.Lock()
	f.access, f.err = access, err
	c.current = nil
	close(f.done)
	c.mu.Unlock()
}

type refreshResult struct {
	pair session.Pair
	err  error
}

// call shields the coordinator from a panicking refresher.
func (c *Coordinator) call(ctx context.Context, refresh string) (res refreshResult) {
	defer func() {
		if p := recover(); p != nil {
			res = refreshResult{err: fmt.Errorf("%w: refresher panic: %v", ErrUnavailable, p)}
		}
	}()
	pair, err := c.refresher.Refresh(ctx, refresh)
	return refreshResult{pair: pair, err: err}
}

// settle applies the refresh outcome to the session, but only if the
// session still holds the refresh credential the refresh was started with.
func (c *Coordinator) settle(ctx context.Context, f *inflight, res refreshResult) (string, error) {
	sameSession := func(s session.State) bool { return s.Refresh() == f.refresh }

	switch {
	case res.err == nil && res.pair.Access != "":
		ev := session.Refreshed{Access: res.pair.Access, Refresh: res.pair.Refresh}
		if !c.store.TransitionIf(sameSession, ev) {
			c.metrics.refresh(OutcomeSessionChanged)
			c.log.Info(ctx, "refresh result discarded, session changed")
			return "", ErrSessionChanged
		}
		c.metrics.refresh(OutcomeOK)
		c.log.Info(ctx, "credential refreshed", "rotated", res.pair.Refresh != "", "waiters", c.waitersOf(f))
		return res.pair.Access, nil

	case res.err == nil, errors.Is(res.err, ErrRefreshRejected):
		err := res.err
		if err == nil {
			err = fmt.Errorf("%w: empty access credential", ErrRefreshRejected)
		}
		loggedOut := c.store.TransitionIf(sameSession, session.Logout{})
		c.metrics.refresh(OutcomeRejected)
		c.log.Warn(ctx, "refresh rejected", "logged_out", loggedOut, "waiters", c.waitersOf(f), "error", err)
		return "", err

	default:
		err := res.err
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		c.metrics.refresh(OutcomeUnavailable)
		c.log.Warn(ctx, "refresh failed, session kept", "waiters", c.waitersOf(f), "error", err)
		return "", err
	}
}
