package theatre

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
)

// naivePlacement is one booking in the oracle's partial schedule.
type naivePlacement struct {
	team       []int
	start, end int
}

// naiveSchedulable is an independent feasibility oracle: plain depth-first
// enumeration over every covering staff subset and start slot, with no
// domains, no propagation, and no heuristics. It deliberately shares no
// code with the solver beyond the input types.
func naiveSchedulable(surgeries []Surgery, staff []StaffMember, totalSlots int) bool {
	load := make([]int, len(staff))
	var placed []naivePlacement

	roleSets := make([]map[string]bool, len(staff))
	for m := range staff {
		roleSets[m] = make(map[string]bool)
		for _, r := range staff[m].Roles {
			roleSets[m][r] = true
		}
	}
	availSets := make([]map[int]bool, len(staff))
	for m := range staff {
		if len(staff[m].Availability) == 0 {
			continue
		}
		availSets[m] = make(map[int]bool)
		for _, s := range staff[m].Availability {
			availSets[m][s] = true
		}
	}

	canWork := func(m, start, end int) bool {
		if availSets[m] == nil {
			return true
		}
		for s := start; s < end; s++ {
			if !availSets[m][s] {
				return false
			}
		}
		return true
	}
	clashes := func(m, start, end int) bool {
		for _, pl := range placed {
			for _, other := range pl.team {
				if other == m && start < pl.end && pl.start < end {
					return true
				}
			}
		}
		return false
	}

	var place func(i int) bool
	place = func(i int) bool {
		if i == len(surgeries) {
			return true
		}
		s := surgeries[i]

		starts := s.EligibleSlots
		if len(starts) == 0 {
			starts = make([]int, totalSlots)
			for k := range starts {
				starts[k] = k
			}
		}

		for mask := 1; mask < 1<<uint(len(staff)); mask++ {
			team := make([]int, 0, len(staff))
			fits := true
			for m := 0; m < len(staff); m++ {
				if mask&(1<<uint(m)) == 0 {
					continue
				}
				if load[m]+s.Duration > staff[m].Capacity {
					fits = false
					break
				}
				team = append(team, m)
			}
			if !fits {
				continue
			}
			covered := true
			for _, r := range s.Roles {
				holder := false
				for _, m := range team {
					if roleSets[m][r] {
						holder = true
						break
					}
				}
				if !holder {
					covered = false
					break
				}
			}
			if !covered {
				continue
			}

			for _, start := range starts {
				end := start + s.Duration
				if end > totalSlots {
					continue
				}
				ok := true
				for _, m := range team {
					if !canWork(m, start, end) || clashes(m, start, end) {
						ok = false
						break
					}
				}
				if !ok {
					continue
				}

				for _, m := range team {
					load[m] += s.Duration
				}
				placed = append(placed, naivePlacement{team: team, start: start, end: end})
				if place(i + 1) {
					return true
				}
				placed = placed[:len(placed)-1]
				for _, m := range team {
					load[m] -= s.Duration
				}
			}
		}
		return false
	}
	return place(0)
}

// randomInstance generates a small instance. Sizes stay tiny so the oracle's
// exhaustive enumeration is cheap.
func randomInstance(rng *rand.Rand) ([]Surgery, []StaffMember, int) {
	roles := []string{"surgeon", "nurse"}
	totalSlots := 3 + rng.Intn(3)

	nStaff := 1 + rng.Intn(3)
	staff := make([]StaffMember, nStaff)
	for m := range staff {
		memberRoles := []string{roles[rng.Intn(len(roles))]}
		if rng.Intn(3) == 0 {
			memberRoles = roles
		}
		var avail []int
		if rng.Intn(10) < 3 {
			for s := 0; s < totalSlots; s++ {
				if rng.Intn(2) == 0 {
					avail = append(avail, s)
				}
			}
		}
		staff[m] = StaffMember{
			ID:           fmt.Sprintf("st-%d", m),
			Roles:        memberRoles,
			Availability: avail,
			Capacity:     rng.Intn(7),
		}
	}

	nSurgeries := 1 + rng.Intn(4)
	surgeries := make([]Surgery, nSurgeries)
	for i := range surgeries {
		required := []string{roles[rng.Intn(len(roles))]}
		if rng.Intn(4) == 0 {
			required = roles
		}
		var eligible []int
		if rng.Intn(10) < 2 {
			eligible = []int{rng.Intn(totalSlots)}
		}
		surgeries[i] = Surgery{
			ID:            fmt.Sprintf("op-%d", i),
			Duration:      1 + rng.Intn(3),
			Roles:         required,
			EligibleSlots: eligible,
		}
	}
	return surgeries, staff, totalSlots
}

func TestSolve_AgreesWithNaiveOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	feasible, infeasible := 0, 0

	for round := 0; round < 80; round++ {
		surgeries, staff, totalSlots := randomInstance(rng)

		res, err := Solve(context.Background(), surgeries, staff, totalSlots)
		if err != nil {
			t.Fatalf("round %d: Solve() error = %v\ninstance: %+v %+v slots=%d",
				round, err, surgeries, staff, totalSlots)
		}
		want := naiveSchedulable(surgeries, staff, totalSlots)
		got := res.Status == StatusScheduled

		if got != want {
			t.Fatalf("round %d: solver says %s, oracle says feasible=%v\ninstance: %+v %+v slots=%d",
				round, res.Status, want, surgeries, staff, totalSlots)
		}
		if got {
			feasible++
			if err := Validate(res.Schedule, surgeries, staff); err != nil {
				t.Fatalf("round %d: Validate() error = %v\nschedule: %v", round, err, res.Schedule)
			}
		} else {
			infeasible++
			if len(res.Reasons) == 0 {
				t.Fatalf("round %d: infeasible result carries no reasons", round)
			}
		}
	}

	// The generator should produce a healthy mix; if not, the comparison
	// proves less than it looks.
	if feasible == 0 || infeasible == 0 {
		t.Errorf("degenerate mix: %d feasible, %d infeasible", feasible, infeasible)
	}
}
