package services

import (
	"context"
	"fmt"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/ports"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/semaphore"
)

// Session used when a client does not identify itself.
const DefaultSessionID = "default"

// Registry bounds used by NewFlowRenderer.
const (
	DefaultMaxSessions = 10000
	DefaultSessionIdle = time.Hour
)

// ODQuerier is the query dependency of FlowRenderer.
type ODQuerier interface {
	Query(ctx context.Context, q domain.ODQuery) (*domain.ODResultSet, error)
}

// RenderSession owns the flow set currently displayed by one client.
// At most one refresh runs at a time; the displayed set is only replaced
// after a successful query.
type RenderSession struct {
	sem *semaphore.Weighted

	mu      sync.Mutex
	gen     uint64
	current *domain.FlowSet
}

func newRenderSession() *RenderSession {
	return &RenderSession{sem: semaphore.NewWeighted(1)}
}

// Current returns the displayed set, or an empty set before the first render.
func (s *RenderSession) Current() domain.FlowSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return *s.current
	}
	return domain.FlowSet{Curves: []domain.FlowCurve{}}
}

func (s *RenderSession) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// publish swaps in set unless the session was cleared after gen was read.
func (s *RenderSession) publish(gen uint64, set *domain.FlowSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return false
	}
	s.current = set
	return true
}

func (s *RenderSession) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.current = nil
}

// FlowRenderer runs the query-then-render cycle for render sessions.
// Sessions live in an LRU registry and expire after sitting idle.
type FlowRenderer struct {
	Querier ODQuerier
	Locator ports.StationLocator
	Style   FlowStyle

	mu       sync.Mutex
	sessions gcache.Cache
}

func NewFlowRenderer(q ODQuerier, locator ports.StationLocator, style FlowStyle) *FlowRenderer {
	return NewBoundedFlowRenderer(q, locator, style, DefaultMaxSessions, DefaultSessionIdle)
}

// NewBoundedFlowRenderer keeps at most maxSessions sessions, each dropped
// after idle without use.
func NewBoundedFlowRenderer(
	q ODQuerier,
	locator ports.StationLocator,
	style FlowStyle,
	maxSessions int,
	idle time.Duration,
) *FlowRenderer {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if idle <= 0 {
		idle = DefaultSessionIdle
	}

	return &FlowRenderer{
		Querier: q,
		Locator: locator,
		Style:   style,
		sessions: gcache.New(maxSessions).
			LRU().
			Expiration(idle).
			Build(),
	}
}

func sessionKey(id string) string {
	if id == "" {
		return DefaultSessionID
	}
	return id
}

func (r *FlowRenderer) lookup(key string) (*RenderSession, bool) {
	v, err := r.sessions.GetIFPresent(key)
	if err != nil {
		return nil, false
	}
	return v.(*RenderSession), true
}

// Session returns the session for id, creating it on first use. Every call
// restarts the session's idle timer.
func (r *FlowRenderer) Session(id string) *RenderSession {
	key := sessionKey(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(key)
	if !ok {
		s = newRenderSession()
	}
	_ = r.sessions.Set(key, s)

	return s
}

// Refresh queries and renders a new flow set for the session and swaps it
// in. Queries rejected by validation never create a session. A refresh that
// arrives while another one for the same session is in flight fails with
// domain.ErrRenderPending. On error the previous set stays displayed, and a
// Clear issued mid-flight wins over the late result.
func (r *FlowRenderer) Refresh(ctx context.Context, sessionID string, q domain.ODQuery) (domain.FlowSet, error) {
	q, _, err := checkQuery(q)
	if err != nil {
		return domain.FlowSet{}, fmt.Errorf("refresh flows: %w", err)
	}

	s := r.Session(sessionID)
	if !s.sem.TryAcquire(1) {
		return domain.FlowSet{}, fmt.Errorf("refresh flows: session %q: %w", sessionKey(sessionID), domain.ErrRenderPending)
	}
	defer s.sem.Release(1)

	gen := s.generation()

	rs, err := r.Querier.Query(ctx, q)
	if err != nil {
		return domain.FlowSet{}, fmt.Errorf("refresh flows: %w", err)
	}

	set := RenderFlows(r.Locator, rs, r.Style)
	s.publish(gen, &set)

	return set, nil
}

// Current returns the displayed set of a session without creating it.
func (r *FlowRenderer) Current(sessionID string) domain.FlowSet {
	if s, ok := r.lookup(sessionKey(sessionID)); ok {
		return s.Current()
	}
	return domain.FlowSet{Curves: []domain.FlowCurve{}}
}

// Clear empties the displayed set. The session itself, and any refresh
// still running in it, is kept so refreshes stay serialized.
func (r *FlowRenderer) Clear(sessionID string) {
	if s, ok := r.lookup(sessionKey(sessionID)); ok {
		s.clear()
	}
}

// Sessions reports how many live sessions are held.
func (r *FlowRenderer) Sessions() int {
	return r.sessions.Len(true)
}
