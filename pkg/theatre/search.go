// Package theatre provides constraint-based scheduling for operating theatres.
// This file implements the backtracking search controller. The traversal
// uses an explicit frame stack rather than native recursion, so depth is
// bounded by the surgery count and cancellation can unwind the search from
// any node. Variable selection is most-constrained-first with an identifier
// tie-break; value ordering is least-constraining-value with the canonical
// candidate order as the tie-break.
package theatre

import (
	"context"
	"sort"
)

// searchState owns every mutable structure of one solve invocation: the
// live domains, the partial assignment, committed per-staff loads, the
// change trail, and the run's statistics. It is created at search start and
// discarded with the result; nothing survives across invocations.
type searchState struct {
	p     *Problem
	cands [][]candidate

	domains  []bitSet
	assigned []int // candidate index per surgery, -1 while unassigned
	load     []int // committed slot-units per staff member
	tr       trail

	stats Stats
	mon   *Monitor
}

// newSearchState builds the root state over freshly built candidate lists.
func newSearchState(p *Problem, cands [][]candidate, mon *Monitor) *searchState {
	st := &searchState{
		p:        p,
		cands:    cands,
		domains:  make([]bitSet, len(cands)),
		assigned: make([]int, len(cands)),
		load:     make([]int, len(p.staff)),
		mon:      mon,
	}
	for i, cs := range cands {
		st.domains[i] = newFullBitSet(len(cs))
		st.assigned[i] = -1
		st.stats.CandidatesBuilt += len(cs)
	}
	return st
}

// commit fixes surgery to its candidate ci and books the team's load.
func (st *searchState) commit(surgery, ci int) {
	st.assigned[surgery] = ci
	dur := st.p.surgeries[surgery].Duration
	for _, m := range st.cands[surgery][ci].team {
		st.load[m] += dur
	}
}

// uncommit reverses commit for the surgery's current candidate.
func (st *searchState) uncommit(surgery int) {
	ci := st.assigned[surgery]
	dur := st.p.surgeries[surgery].Duration
	for _, m := range st.cands[surgery][ci].team {
		st.load[m] -= dur
	}
	st.assigned[surgery] = -1
}

// selectSurgery returns the unassigned surgery with the smallest live
// domain, or -1 when every surgery is assigned. Scanning in identifier
// order with a strict comparison makes the identifier the tie-break.
func (st *searchState) selectSurgery() int {
	best, bestCount := -1, 0
	for _, i := range st.p.surgeryOrder {
		if st.assigned[i] >= 0 {
			continue
		}
		if c := st.domains[i].count; best == -1 || c < bestCount {
			best, bestCount = i, c
		}
	}
	return best
}

// orderValues returns the surgery's live candidate indices ordered by the
// least-constraining-value heuristic: fewest forward-checking removals
// first. The stable sort preserves the canonical candidate order between
// equal costs, which keeps repeated runs byte-identical.
func (st *searchState) orderValues(surgery int) []int {
	dom := &st.domains[surgery]
	values := dom.appendValues(make([]int, 0, dom.count))
	if len(values) <= 1 {
		return values
	}
	costs := make([]int, len(values))
	for k, ci := range values {
		costs[k] = st.countRemovals(surgery, &st.cands[surgery][ci])
	}
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return costs[order[a]] < costs[order[b]]
	})
	out := make([]int, len(values))
	for i, k := range order {
		out[i] = values[k]
	}
	return out
}

// searchFrame tracks one surgery on the explicit stack: the values still to
// try, the position of the next one, and the trail mark taken when the
// current value was committed.
type searchFrame struct {
	surgery int
	values  []int
	next    int
	mark    int
}

// searchOutcome is the terminal state of a search run.
type searchOutcome int

const (
	outcomeSolved searchOutcome = iota
	outcomeExhausted
	outcomeCancelled
)

// runSearch drives the backtracking loop to a terminal outcome. The context
// is polled at the top of every iteration, which covers each selection
// transition; on cancellation the loop returns immediately and the caller
// discards the state.
func (st *searchState) runSearch(ctx context.Context) searchOutcome {
	first := st.selectSurgery()
	if first == -1 {
		return outcomeSolved
	}

	stack := make([]*searchFrame, 0, len(st.p.surgeries))
	stack = append(stack, &searchFrame{surgery: first, values: st.orderValues(first)})

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return outcomeCancelled
		}

		frame := stack[len(stack)-1]

		// Control is back at this frame after a failed subtree or a
		// wipeout: retract the frame's committed value before moving on.
		if st.assigned[frame.surgery] >= 0 {
			st.tr.undoTo(frame.mark, st.domains)
			st.uncommit(frame.surgery)
		}

		if frame.next >= len(frame.values) {
			stack = stack[:len(stack)-1]
			st.recordBacktrack()
			continue
		}

		ci := frame.values[frame.next]
		frame.next++
		st.recordNode(len(stack))

		frame.mark = st.tr.mark()
		st.commit(frame.surgery, ci)

		wiped, removed := st.forwardCheck(frame.surgery, &st.cands[frame.surgery][ci])
		st.recordRemovals(removed)
		if wiped >= 0 {
			st.recordWipeout(wiped)
			continue
		}

		next := st.selectSurgery()
		if next == -1 {
			return outcomeSolved
		}
		stack = append(stack, &searchFrame{surgery: next, values: st.orderValues(next)})
	}

	return outcomeExhausted
}

// recordNode counts one value attempt and tracks the search depth.
func (st *searchState) recordNode(depth int) {
	st.stats.NodesExplored++
	if depth > st.stats.MaxDepth {
		st.stats.MaxDepth = depth
	}
	if st.mon != nil {
		st.mon.RecordNode()
		st.mon.RecordDepth(depth)
	}
}

// recordBacktrack counts one exhausted frame.
func (st *searchState) recordBacktrack() {
	st.stats.Backtracks++
	if st.mon != nil {
		st.mon.RecordBacktrack()
	}
}

// recordRemovals counts propagation removals written to the trail.
func (st *searchState) recordRemovals(n int) {
	st.stats.Removals += n
	if st.mon != nil {
		st.mon.RecordRemovals(n)
	}
}

// recordWipeout counts a domain wipeout against the surgery that emptied.
func (st *searchState) recordWipeout(surgery int) {
	st.stats.Wipeouts++
	if st.stats.WipeoutsBySurgery == nil {
		st.stats.WipeoutsBySurgery = make(map[string]int)
	}
	st.stats.WipeoutsBySurgery[st.p.surgeries[surgery].ID]++
	if st.mon != nil {
		st.mon.RecordWipeout(st.p.surgeries[surgery].ID)
	}
}
