// Package theatre provides constraint-based scheduling for operating theatres.
// This file holds the pure constraint predicates shared by the search and by
// Validate, the independent re-checker callers use to verify schedules
// produced by this engine or elsewhere.
package theatre

import (
	"fmt"
	"sort"
)

// intervalsOverlap reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func intervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// rolesCovered reports whether the union of covered roles includes every
// required role. Both slices must be sorted ascending.
func rolesCovered(required, covered []string) bool {
	i := 0
	for _, r := range required {
		for i < len(covered) && covered[i] < r {
			i++
		}
		if i == len(covered) || covered[i] != r {
			return false
		}
	}
	return true
}

// Validate independently re-checks a schedule against the scheduling
// invariants: completeness (every surgery placed exactly once, every
// referenced identifier known), role coverage, staff capacity, pairwise
// temporal disjointness per staff member, and availability over each
// occupied interval. It shares no state with the solver, so it can vet
// schedules produced anywhere. Returns nil when all invariants hold,
// otherwise an error naming the first violation in a deterministic order
// (surgeries in input order, staff checks sorted by identifier).
func Validate(schedule Schedule, surgeries []Surgery, staff []StaffMember) error {
	staffByID := make(map[string]*StaffMember, len(staff))
	for i := range staff {
		m := &staff[i]
		if _, dup := staffByID[m.ID]; dup {
			return fmt.Errorf("staff %q: duplicate identifier", m.ID)
		}
		staffByID[m.ID] = m
	}
	known := make(map[string]bool, len(surgeries))

	type booking struct {
		surgery    string
		start, end int
	}
	load := make(map[string]int, len(staff))
	bookings := make(map[string][]booking, len(staff))

	for i := range surgeries {
		s := &surgeries[i]
		if known[s.ID] {
			return fmt.Errorf("surgery %q: duplicate identifier", s.ID)
		}
		known[s.ID] = true

		pl, ok := schedule[s.ID]
		if !ok {
			return fmt.Errorf("surgery %q: missing from schedule", s.ID)
		}
		if len(pl.Staff) == 0 {
			return fmt.Errorf("surgery %q: empty staff assignment", s.ID)
		}
		if pl.Start < 0 {
			return fmt.Errorf("surgery %q: negative start slot %d", s.ID, pl.Start)
		}
		end := pl.Start + s.Duration

		var covered []string
		seen := make(map[string]bool, len(pl.Staff))
		for _, id := range pl.Staff {
			if seen[id] {
				return fmt.Errorf("surgery %q: staff %q assigned twice", s.ID, id)
			}
			seen[id] = true
			m, ok := staffByID[id]
			if !ok {
				return fmt.Errorf("surgery %q: unknown staff %q", s.ID, id)
			}
			covered = append(covered, m.Roles...)
			if !availableOver(m, pl.Start, end) {
				return fmt.Errorf("surgery %q: staff %q unavailable in [%d,%d)", s.ID, id, pl.Start, end)
			}
			load[id] += s.Duration
			bookings[id] = append(bookings[id], booking{surgery: s.ID, start: pl.Start, end: end})
		}

		required := normalizeStrings(s.Roles)
		if !rolesCovered(required, normalizeStrings(covered)) {
			return fmt.Errorf("surgery %q: assigned staff do not cover required roles %v", s.ID, required)
		}
	}

	for id := range schedule {
		if !known[id] {
			return fmt.Errorf("schedule places unknown surgery %q", id)
		}
	}

	ids := make([]string, 0, len(bookings))
	for id := range bookings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if load[id] > staffByID[id].Capacity {
			return fmt.Errorf("staff %q: assigned %d slot-units, capacity %d", id, load[id], staffByID[id].Capacity)
		}
		bs := bookings[id]
		sort.Slice(bs, func(a, b int) bool {
			if bs[a].start != bs[b].start {
				return bs[a].start < bs[b].start
			}
			return bs[a].surgery < bs[b].surgery
		})
		for i := 1; i < len(bs); i++ {
			if intervalsOverlap(bs[i-1].start, bs[i-1].end, bs[i].start, bs[i].end) {
				return fmt.Errorf("staff %q: surgeries %q and %q overlap in time",
					id, bs[i-1].surgery, bs[i].surgery)
			}
		}
	}

	return nil
}

// IsValid is the boolean form of Validate.
func IsValid(schedule Schedule, surgeries []Surgery, staff []StaffMember) bool {
	return Validate(schedule, surgeries, staff) == nil
}

// availableOver reports whether the member is available for every slot in
// [start, end). An empty availability set means unrestricted.
func availableOver(m *StaffMember, start, end int) bool {
	if len(m.Availability) == 0 {
		return true
	}
	set := make(map[int]bool, len(m.Availability))
	for _, s := range m.Availability {
		set[s] = true
	}
	for s := start; s < end; s++ {
		if !set[s] {
			return false
		}
	}
	return true
}
