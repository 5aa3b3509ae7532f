// Package theatre provides constraint-based scheduling for operating theatres.
// This file implements forward checking: after a surgery is committed to a
// value, the domains of all unassigned surgeries are pruned of values that
// can no longer lead to a consistent schedule. Every removal is written to
// the change trail so backtracking restores domains exactly.
package theatre

// forwardCheck prunes unassigned domains against the just-committed
// (surgery, candidate) pair. A value of surgery T is removed when its team
// shares a member with the committed team and either the occupied intervals
// overlap or the shared member's committed load no longer leaves room for
// T's duration. Loads must already include the committed surgery.
//
// Returns the index of the first surgery whose domain wiped out (-1 if
// none) and the number of removals written to the trail. On wipeout the
// scan stops immediately; the partial removals stay on the trail and are
// undone by the caller's backtrack.
func (st *searchState) forwardCheck(surgery int, c *candidate) (wiped, removed int) {
	for _, t := range st.p.surgeryOrder {
		if t == surgery || st.assigned[t] >= 0 {
			continue
		}
		dom := &st.domains[t]
		durT := st.p.surgeries[t].Duration
		dom.iterate(func(ci int) {
			tc := &st.cands[t][ci]
			if !masksIntersect(tc.mask, c.mask) {
				return
			}
			if intervalsOverlap(tc.start, tc.end, c.start, c.end) || st.overCapacity(tc, c, durT, 0) {
				dom.clear(ci)
				st.tr.record(t, ci)
				removed++
			}
		})
		if dom.count == 0 {
			return t, removed
		}
	}
	return -1, removed
}

// countRemovals reports how many values forward checking would remove if
// the (surgery, candidate) pair were committed, without mutating any state.
// It is the cost measure of the least-constraining-value ordering and must
// mirror forwardCheck exactly; the candidate's own duration is projected
// onto its members' loads since it is not committed yet.
func (st *searchState) countRemovals(surgery int, c *candidate) int {
	durS := st.p.surgeries[surgery].Duration
	count := 0
	for _, t := range st.p.surgeryOrder {
		if t == surgery || st.assigned[t] >= 0 {
			continue
		}
		dom := &st.domains[t]
		durT := st.p.surgeries[t].Duration
		dom.iterate(func(ci int) {
			tc := &st.cands[t][ci]
			if !masksIntersect(tc.mask, c.mask) {
				return
			}
			if intervalsOverlap(tc.start, tc.end, c.start, c.end) || st.overCapacity(tc, c, durT, durS) {
				count++
			}
		})
	}
	return count
}

// overCapacity reports whether committing value tc for a surgery of
// duration durT would push any member shared with base over capacity.
// extra is duration attributed to base's members that is not yet reflected
// in the loads (zero once base is committed).
func (st *searchState) overCapacity(tc, base *candidate, durT, extra int) bool {
	for _, m := range tc.team {
		if !base.hasMember(m) {
			continue
		}
		if st.load[m]+extra+durT > st.p.staff[m].Capacity {
			return true
		}
	}
	return false
}
