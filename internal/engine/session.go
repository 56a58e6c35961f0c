package engine

import (
	"context"
	"sync"

	"geotube/internal/engine/geo"
)

// Session is the transient state of one search operation, from
// invocation to resolution. Exactly one session is current at a time; a
// new search supersedes the previous one.
type Session struct {
	Generation int64               `json:"generation"`
	Coordinate geo.Coordinate      `json:"coordinate"`
	Query      string              `json:"query,omitempty"`
	Intent     IntentKind          `json:"intent"`
	Pending    bool                `json:"pending"`
	Output     *SearchOutput       `json:"output,omitempty"`
	Err        error               `json:"-"`
	Place      geo.PlaceDescriptor `json:"place"`
}

// Sessions owns the current search session. It enforces the
// supersession rule: when a second search starts before the first
// resolves, the first call's late-arriving outcome must not overwrite
// the second call's session state. Implemented with a monotonically
// increasing generation counter compared at commit time — no
// cancellation of the stale request is needed, its result is simply
// discarded.
type Sessions struct {
	mu      sync.Mutex
	gen     int64
	current Session
}

func NewSessions() *Sessions {
	return &Sessions{}
}

// Search validates the input, runs the orchestrator, and commits the
// outcome to the current session unless a newer search has started in
// the meantime. The outcome is returned to the caller either way.
func (s *Sessions) Search(ctx context.Context, lat, lng float64, query string, intent IntentKind) (*SearchOutput, error) {
	if !intent.Valid() {
		intent = IntentSelectedLocation
	}

	coord, err := geo.NewCoordinate(lat, lng)
	if err != nil {
		serr := searchErr(err, intent, query)
		gen := s.begin(coord, query, intent)
		s.commit(gen, nil, serr)
		return nil, serr
	}

	gen := s.begin(coord, query, intent)
	out, err := Search(ctx, coord, query, intent)
	s.commit(gen, out, err)
	return out, err
}

// begin registers a new pending session and returns its generation.
func (s *Sessions) begin(coord geo.Coordinate, query string, intent IntentKind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.current = Session{
		Generation: s.gen,
		Coordinate: coord,
		Query:      query,
		Intent:     intent,
		Pending:    true,
		Place:      geo.Classify(coord),
	}
	return s.gen
}

// commit records the outcome for generation gen. Stale generations are
// dropped: their results never reach the session state.
func (s *Sessions) commit(gen int64, out *SearchOutput, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Generation != gen {
		metrics.SupersededSearches.Add(1)
		return
	}
	s.current.Pending = false
	s.current.Output = out
	s.current.Err = err
}

// Current returns a copy of the current session state.
func (s *Sessions) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear resets the session state to empty. A pending search's outcome
// is discarded when it eventually resolves, same as supersession.
func (s *Sessions) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.current = Session{}
}
