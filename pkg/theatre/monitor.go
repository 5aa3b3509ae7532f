package theatre

// monitor.go: statistics collection for solve invocations

import (
	"fmt"
	"sync"
	"time"
)

// Stats describes the work one solve invocation performed. Every Result
// carries a Stats value; an optional Monitor aggregates the same counters
// across invocations.
type Stats struct {
	// CandidatesBuilt is the total number of candidate values the domain
	// builder produced across all surgeries.
	CandidatesBuilt int `json:"candidatesBuilt"`
	// NodesExplored counts value attempts (search tree nodes).
	NodesExplored int `json:"nodesExplored"`
	// Backtracks counts frames popped after exhausting their values.
	Backtracks int `json:"backtracks"`
	// Wipeouts counts forward-checking passes that emptied some domain.
	Wipeouts int `json:"wipeouts"`
	// Removals counts candidate removals written to the change trail.
	Removals int `json:"removals"`
	// MaxDepth is the deepest frame stack reached.
	MaxDepth int `json:"maxDepth"`
	// SearchTime is the wall-clock duration of the invocation.
	SearchTime time.Duration `json:"searchTime"`
	// WipeoutsBySurgery counts, per surgery identifier, how often that
	// surgery's domain was the one that wiped out. Diagnostic color for
	// infeasible instances; nil when no wipeout occurred.
	WipeoutsBySurgery map[string]int `json:"wipeoutsBySurgery,omitempty"`
}

// String returns a one-line summary of the counters.
func (s Stats) String() string {
	return fmt.Sprintf("candidates=%d nodes=%d backtracks=%d wipeouts=%d removals=%d maxDepth=%d time=%v",
		s.CandidatesBuilt, s.NodesExplored, s.Backtracks, s.Wipeouts, s.Removals, s.MaxDepth, s.SearchTime)
}

// Monitor aggregates statistics across solve invocations. All methods are
// safe for concurrent use, so a single Monitor can observe a whole batch of
// parallel solves.
type Monitor struct {
	mu        sync.Mutex
	stats     Stats
	startTime time.Time
}

// NewMonitor creates a monitor. Aggregated search time accumulates the
// duration reported by each finished invocation.
func NewMonitor() *Monitor {
	return &Monitor{startTime: time.Now()}
}

// Snapshot returns a copy of the aggregated statistics.
func (m *Monitor) Snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.stats
	if m.stats.WipeoutsBySurgery != nil {
		out.WipeoutsBySurgery = make(map[string]int, len(m.stats.WipeoutsBySurgery))
		for k, v := range m.stats.WipeoutsBySurgery {
			out.WipeoutsBySurgery[k] = v
		}
	}
	return out
}

// RecordCandidates adds to the built-candidate total.
func (m *Monitor) RecordCandidates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.CandidatesBuilt += n
}

// RecordNode counts one explored node.
func (m *Monitor) RecordNode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.NodesExplored++
}

// RecordBacktrack counts one backtrack.
func (m *Monitor) RecordBacktrack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Backtracks++
}

// RecordWipeout counts a wipeout against the named surgery.
func (m *Monitor) RecordWipeout(surgeryID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Wipeouts++
	if m.stats.WipeoutsBySurgery == nil {
		m.stats.WipeoutsBySurgery = make(map[string]int)
	}
	m.stats.WipeoutsBySurgery[surgeryID]++
}

// RecordRemovals adds propagation removals to the total.
func (m *Monitor) RecordRemovals(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Removals += n
}

// RecordDepth tracks the maximum search depth seen.
func (m *Monitor) RecordDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.stats.MaxDepth {
		m.stats.MaxDepth = depth
	}
}

// FinishInvocation accumulates one invocation's wall-clock duration.
func (m *Monitor) FinishInvocation(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SearchTime += d
}
