// Package theatre provides constraint-based scheduling for operating theatres.
// This file defines the external data model (surgeries, staff, the scheduling
// horizon) and the Problem constructor that validates and normalizes raw
// records before any search work begins.
package theatre

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidInput is returned when a scheduling request contains malformed
// records: non-positive durations, slot indices outside the horizon,
// duplicate identifiers, empty role sets, or a non-positive slot count.
// Use errors.Is to test for it; the wrapped message names the offending
// record and field.
var ErrInvalidInput = errors.New("invalid input")

// maxRolesPerSurgery bounds the number of distinct required roles for a
// single surgery. Role coverage is tracked in a single machine word during
// team enumeration.
const maxRolesPerSurgery = 64

// Surgery describes one procedure to be placed on the schedule.
// A surgery occupies the half-open slot interval [start, start+Duration)
// once assigned a start slot.
//
// EligibleSlots lists the permissible start slots; an empty list means every
// slot in the horizon is eligible. Roles must be non-empty: each listed role
// must be covered by at least one assigned staff member.
type Surgery struct {
	ID            string   `json:"id"`
	Duration      int      `json:"duration"`
	Roles         []string `json:"roles"`
	EligibleSlots []int    `json:"eligibleSlots,omitempty"`
}

// StaffMember describes one schedulable person.
//
// Availability lists the slots the member may work; an empty list means the
// member is available for the whole horizon. Capacity is the maximum total
// number of slot-units the member may be assigned across all surgeries in
// one schedule; zero capacity is valid and means the member cannot serve.
type StaffMember struct {
	ID           string   `json:"id"`
	Roles        []string `json:"roles"`
	Availability []int    `json:"availability,omitempty"`
	Capacity     int      `json:"capacity"`
}

// Placement is a surgery's committed team and start slot.
// Staff identifiers are sorted ascending.
type Placement struct {
	Staff []string `json:"staff"`
	Start int      `json:"start"`
}

// Schedule maps every surgery identifier to its placement.
type Schedule map[string]Placement

// Problem is an immutable, validated scheduling instance. All solver
// invocations against the same Problem are independent; a Problem may be
// shared across goroutines.
type Problem struct {
	surgeries  []Surgery
	staff      []StaffMember
	totalSlots int

	// surgeryOrder holds surgery indices sorted by identifier. Iterating in
	// this order gives the deterministic identifier tie-break during
	// variable selection.
	surgeryOrder []int

	// avail[i] is a slot bitset for staff member i. Bit s set means the
	// member is available in slot s.
	avail [][]uint64
}

// NewProblem validates and normalizes a scheduling instance.
//
// Inputs are copied; the caller may mutate its slices afterwards without
// affecting the Problem. Role, availability, and eligible-slot sets are
// deduplicated and sorted so that downstream enumeration is independent of
// the caller's ordering. Returns an error wrapping ErrInvalidInput on the
// first malformed record found.
func NewProblem(surgeries []Surgery, staff []StaffMember, totalSlots int) (*Problem, error) {
	if totalSlots <= 0 {
		return nil, fmt.Errorf("%w: total slots must be positive, got %d", ErrInvalidInput, totalSlots)
	}

	p := &Problem{
		surgeries:  make([]Surgery, len(surgeries)),
		staff:      make([]StaffMember, len(staff)),
		totalSlots: totalSlots,
	}

	seenSurgeries := make(map[string]bool, len(surgeries))
	for i, s := range surgeries {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: surgery at position %d has an empty identifier", ErrInvalidInput, i)
		}
		if seenSurgeries[s.ID] {
			return nil, fmt.Errorf("%w: duplicate surgery identifier %q", ErrInvalidInput, s.ID)
		}
		seenSurgeries[s.ID] = true
		if s.Duration <= 0 {
			return nil, fmt.Errorf("%w: surgery %q: duration must be positive, got %d", ErrInvalidInput, s.ID, s.Duration)
		}
		if len(s.Roles) == 0 {
			return nil, fmt.Errorf("%w: surgery %q: required roles must be non-empty", ErrInvalidInput, s.ID)
		}
		roles := normalizeStrings(s.Roles)
		for _, r := range roles {
			if r == "" {
				return nil, fmt.Errorf("%w: surgery %q: empty role name", ErrInvalidInput, s.ID)
			}
		}
		if len(roles) > maxRolesPerSurgery {
			return nil, fmt.Errorf("%w: surgery %q: more than %d distinct roles", ErrInvalidInput, s.ID, maxRolesPerSurgery)
		}
		eligible := normalizeInts(s.EligibleSlots)
		for _, slot := range eligible {
			if slot < 0 || slot >= totalSlots {
				return nil, fmt.Errorf("%w: surgery %q: eligible slot %d outside [0,%d)", ErrInvalidInput, s.ID, slot, totalSlots)
			}
		}
		p.surgeries[i] = Surgery{
			ID:            s.ID,
			Duration:      s.Duration,
			Roles:         roles,
			EligibleSlots: eligible,
		}
	}

	seenStaff := make(map[string]bool, len(staff))
	for i, m := range staff {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: staff member at position %d has an empty identifier", ErrInvalidInput, i)
		}
		if seenStaff[m.ID] {
			return nil, fmt.Errorf("%w: duplicate staff identifier %q", ErrInvalidInput, m.ID)
		}
		seenStaff[m.ID] = true
		if m.Capacity < 0 {
			return nil, fmt.Errorf("%w: staff %q: capacity must be non-negative, got %d", ErrInvalidInput, m.ID, m.Capacity)
		}
		availability := normalizeInts(m.Availability)
		for _, slot := range availability {
			if slot < 0 || slot >= totalSlots {
				return nil, fmt.Errorf("%w: staff %q: availability slot %d outside [0,%d)", ErrInvalidInput, m.ID, slot, totalSlots)
			}
		}
		p.staff[i] = StaffMember{
			ID:           m.ID,
			Roles:        normalizeStrings(m.Roles),
			Availability: availability,
			Capacity:     m.Capacity,
		}
	}

	p.surgeryOrder = make([]int, len(p.surgeries))
	for i := range p.surgeryOrder {
		p.surgeryOrder[i] = i
	}
	sort.Slice(p.surgeryOrder, func(a, b int) bool {
		return p.surgeries[p.surgeryOrder[a]].ID < p.surgeries[p.surgeryOrder[b]].ID
	})

	p.avail = make([][]uint64, len(p.staff))
	words := (totalSlots + 63) / 64
	for i, m := range p.staff {
		w := make([]uint64, words)
		if len(m.Availability) == 0 {
			for s := 0; s < totalSlots; s++ {
				w[s/64] |= 1 << uint(s%64)
			}
		} else {
			for _, s := range m.Availability {
				w[s/64] |= 1 << uint(s%64)
			}
		}
		p.avail[i] = w
	}

	return p, nil
}

// TotalSlots returns the scheduling horizon length.
func (p *Problem) TotalSlots() int { return p.totalSlots }

// Surgeries returns a copy of the normalized surgery records.
func (p *Problem) Surgeries() []Surgery {
	out := make([]Surgery, len(p.surgeries))
	copy(out, p.surgeries)
	return out
}

// Staff returns a copy of the normalized staff records.
func (p *Problem) Staff() []StaffMember {
	out := make([]StaffMember, len(p.staff))
	copy(out, p.staff)
	return out
}

// availableFor reports whether staff member m is available for every slot in
// the half-open interval [start, end).
func (p *Problem) availableFor(m, start, end int) bool {
	w := p.avail[m]
	for s := start; s < end; s++ {
		if (w[s/64]>>uint(s%64))&1 == 0 {
			return false
		}
	}
	return true
}

// normalizeInts returns a sorted, deduplicated copy of values.
// The result is nil for empty input.
func normalizeInts(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	out := make([]int, len(values))
	copy(out, values)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// normalizeStrings returns a sorted, deduplicated copy of values.
// The result is nil for empty input.
func normalizeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
