package progress

import "sync"

// Snapshot is a point-in-time copy of a State.
type Snapshot struct {
	Total    uint64
	Position uint64
	// Found is false until a total has been discovered.
	Found bool
}

// Percent returns the completion percentage, or false while the total is
// unknown or zero.
func (s Snapshot) Percent() (float64, bool) {
	if !s.Found || s.Total == 0 {
		return 0, false
	}
	return float64(s.Position) * 100 / float64(s.Total), true
}

// State is a Sink that remembers the latest update. It is safe to read
// while a scan writes to it.
type State struct {
	mu       sync.RWMutex
	total    uint64
	position uint64
	found    bool
}

// SetTotal implements Sink.
func (s *State) SetTotal(total uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = total
	s.found = true
}

// SetPosition implements Sink.
func (s *State) SetPosition(position uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = position
}

// Snapshot returns the current values.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Total: s.total, Position: s.position, Found: s.found}
}

// MultiSink fans updates out to several sinks in order.
type MultiSink []Sink

// SetTotal implements Sink.
func (m MultiSink) SetTotal(total uint64) {
	for _, s := range m {
		s.SetTotal(total)
	}
}

// SetPosition implements Sink.
func (m MultiSink) SetPosition(position uint64) {
	for _, s := range m {
		s.SetPosition(position)
	}
}

// Discard is a Sink that drops every update.
var Discard Sink = discard{}

type discard struct{}

func (discard) SetTotal(uint64)    {}
func (discard) SetPosition(uint64) {}
