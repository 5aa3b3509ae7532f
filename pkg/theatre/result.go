// Package theatre provides constraint-based scheduling for operating theatres.
// This file assembles terminal results: a complete schedule on success, or
// a structured infeasibility diagnostic with per-surgery reason tags.
package theatre

import "sort"

// Status is the terminal outcome of a solve invocation.
type Status string

const (
	// StatusScheduled means a complete, invariant-satisfying schedule was
	// found.
	StatusScheduled Status = "scheduled"
	// StatusInfeasible means no schedule exists for the instance; Reasons
	// carries the per-surgery diagnostic tags.
	StatusInfeasible Status = "infeasible"
	// StatusCancelled means the caller's context expired or was cancelled
	// before the search reached a verdict. Re-invoking with a fresh context
	// is the only recovery; the engine never retries internally.
	StatusCancelled Status = "cancelled"
)

// Reason tags why a surgery could not be placed.
type Reason string

const (
	// ReasonStructural means the surgery had no candidate value at all
	// before search began: no role-covering, available, capacity-fitting
	// team and start slot exists for it in isolation.
	ReasonStructural Reason = "structural"
	// ReasonCombinatorial means every surgery had candidates in isolation
	// but no joint assignment exists. The tag is the best locally-known
	// diagnostic, not a minimal unsatisfiable core.
	ReasonCombinatorial Reason = "combinatorial"
)

// Result is the outcome of one solve invocation. Schedule is populated only
// for StatusScheduled and covers every input surgery; Reasons is populated
// only for StatusInfeasible. A Result is never partial: a cancelled or
// infeasible run carries no placements.
type Result struct {
	Status   Status            `json:"status"`
	Schedule Schedule          `json:"schedule,omitempty"`
	Reasons  map[string]Reason `json:"reasons,omitempty"`
	Stats    Stats             `json:"stats"`
}

// assembleSchedule converts a complete assignment into the external
// schedule form. Team members are reported by identifier, sorted ascending.
func assembleSchedule(st *searchState) Schedule {
	out := make(Schedule, len(st.p.surgeries))
	for i := range st.p.surgeries {
		c := &st.cands[i][st.assigned[i]]
		ids := make([]string, len(c.team))
		for k, m := range c.team {
			ids[k] = st.p.staff[m].ID
		}
		sort.Strings(ids)
		out[st.p.surgeries[i].ID] = Placement{Staff: ids, Start: c.start}
	}
	return out
}

// structuralReasons tags every surgery whose initial domain is empty.
func structuralReasons(p *Problem, cands [][]candidate) map[string]Reason {
	reasons := make(map[string]Reason)
	for i, cs := range cands {
		if len(cs) == 0 {
			reasons[p.surgeries[i].ID] = ReasonStructural
		}
	}
	return reasons
}

// combinatorialReasons tags every surgery after an exhausted search: each
// had candidates in isolation, yet no joint assignment exists.
func combinatorialReasons(p *Problem) map[string]Reason {
	reasons := make(map[string]Reason, len(p.surgeries))
	for i := range p.surgeries {
		reasons[p.surgeries[i].ID] = ReasonCombinatorial
	}
	return reasons
}
