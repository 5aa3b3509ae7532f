// Package theatre provides constraint-based scheduling for operating theatres.
// This file implements the domain builder: it expands every surgery into its
// initial list of candidate values under the static checks (role coverage,
// availability over the occupied interval, horizon fit, and per-member
// capacity), in a canonical order that later serves as the deterministic
// value tie-break.
package theatre

import "sort"

// candidate is one value of a surgery's domain: a staff team together with a
// start slot. The occupied interval is [start, end). team holds staff
// indices ascending; mask is the same team as a bitset over staff indices
// for O(words) intersection tests during propagation.
type candidate struct {
	team  []int
	mask  []uint64
	start int
	end   int
}

// hasMember reports whether staff index m is on the candidate's team.
func (c *candidate) hasMember(m int) bool {
	return (c.mask[m/64]>>uint(m%64))&1 == 1
}

// masksIntersect reports whether two staff bitsets share a member.
func masksIntersect(a, b []uint64) bool {
	for i := range a {
		if a[i]&b[i] != 0 {
			return true
		}
	}
	return false
}

// buildCandidates enumerates the initial domain of every surgery.
//
// For each surgery it first narrows the staff pool to members who hold at
// least one required role and whose capacity fits the surgery's duration,
// then enumerates minimal role-covering teams of up to maxTeamSize members
// (maxTeamSize <= 0 means one member per distinct required role). A team is
// minimal when no member can be dropped without losing coverage; supersets
// of covering teams are never emitted since each member must contribute a
// role its predecessors do not cover.
//
// Teams are ordered by size, then lexicographically by their member
// identifier lists; within a team, start slots ascend. A start slot is kept
// when the occupied interval fits the horizon and every team member is
// available for all of it. That emission order is the canonical candidate
// order relied on by the deterministic value tie-break.
//
// A surgery whose candidate list comes back empty is structurally
// infeasible; the caller reports it without entering search.
func buildCandidates(p *Problem, maxTeamSize int) [][]candidate {
	out := make([][]candidate, len(p.surgeries))
	for i := range p.surgeries {
		out[i] = surgeryCandidates(p, i, maxTeamSize)
	}
	return out
}

// surgeryCandidates enumerates the candidate list for one surgery.
func surgeryCandidates(p *Problem, surgery, maxTeamSize int) []candidate {
	s := &p.surgeries[surgery]

	roleBit := make(map[string]uint64, len(s.Roles))
	for i, r := range s.Roles {
		roleBit[r] = 1 << uint(i)
	}
	full := uint64(1)<<uint(len(s.Roles)) - 1

	// Pool of usable staff, ordered by identifier so that enumeration and
	// the resulting team order are independent of input ordering.
	type poolEntry struct {
		staff int
		roles uint64
	}
	var pool []poolEntry
	for m := range p.staff {
		if p.staff[m].Capacity < s.Duration {
			continue
		}
		var mask uint64
		for _, r := range p.staff[m].Roles {
			if bit, ok := roleBit[r]; ok {
				mask |= bit
			}
		}
		if mask != 0 {
			pool = append(pool, poolEntry{staff: m, roles: mask})
		}
	}
	sort.Slice(pool, func(a, b int) bool {
		return p.staff[pool[a].staff].ID < p.staff[pool[b].staff].ID
	})

	// suffix[i] is the union of roles coverable by pool[i:]; branches that
	// cannot reach full coverage even with every remaining member are cut.
	suffix := make([]uint64, len(pool)+1)
	for i := len(pool) - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] | pool[i].roles
	}

	limit := maxTeamSize
	if limit <= 0 {
		limit = len(s.Roles)
	}

	var teams [][]int
	var cur []int
	var curRoles []uint64
	var extend func(pos int, covered uint64)
	extend = func(pos int, covered uint64) {
		if covered == full {
			if minimalCover(curRoles, full) {
				team := make([]int, len(cur))
				copy(team, cur)
				teams = append(teams, team)
			}
			return
		}
		if len(cur) == limit {
			return
		}
		for i := pos; i < len(pool); i++ {
			if covered|suffix[i] != full {
				break
			}
			if pool[i].roles&^covered == 0 {
				continue
			}
			cur = append(cur, pool[i].staff)
			curRoles = append(curRoles, pool[i].roles)
			extend(i+1, covered|pool[i].roles)
			cur = cur[:len(cur)-1]
			curRoles = curRoles[:len(curRoles)-1]
		}
	}
	extend(0, 0)

	sort.SliceStable(teams, func(a, b int) bool {
		if len(teams[a]) != len(teams[b]) {
			return len(teams[a]) < len(teams[b])
		}
		for i := range teams[a] {
			ida, idb := p.staff[teams[a][i]].ID, p.staff[teams[b][i]].ID
			if ida != idb {
				return ida < idb
			}
		}
		return false
	})

	starts := s.EligibleSlots
	if len(starts) == 0 {
		starts = make([]int, p.totalSlots)
		for i := range starts {
			starts[i] = i
		}
	}

	words := (len(p.staff) + 63) / 64
	var cands []candidate
	for _, team := range teams {
		sorted := make([]int, len(team))
		copy(sorted, team)
		sort.Ints(sorted)
		mask := make([]uint64, words)
		for _, m := range sorted {
			mask[m/64] |= 1 << uint(m%64)
		}
		for _, start := range starts {
			end := start + s.Duration
			if end > p.totalSlots {
				continue
			}
			ok := true
			for _, m := range sorted {
				if !p.availableFor(m, start, end) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			cands = append(cands, candidate{team: sorted, mask: mask, start: start, end: end})
		}
	}
	return cands
}

// minimalCover reports whether dropping any single member would lose role
// coverage. memberRoles holds each team member's covered-role mask.
func minimalCover(memberRoles []uint64, full uint64) bool {
	for drop := range memberRoles {
		var rest uint64
		for i, r := range memberRoles {
			if i != drop {
				rest |= r
			}
		}
		if rest == full {
			return false
		}
	}
	return true
}
