package theatre

import "testing"

// mustProblem builds a Problem or fails the test.
func mustProblem(t *testing.T, surgeries []Surgery, staff []StaffMember, totalSlots int) *Problem {
	t.Helper()
	p, err := NewProblem(surgeries, staff, totalSlots)
	if err != nil {
		t.Fatalf("NewProblem() error = %v", err)
	}
	return p
}

// teamIDs maps a candidate's staff indices to identifiers.
func teamIDs(p *Problem, c *candidate) []string {
	ids := make([]string, len(c.team))
	for i, m := range c.team {
		ids[i] = p.staff[m].ID
	}
	return ids
}

// sameStrings reports element-wise equality.
func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// newTestState builds the search state for a problem using default
// candidate enumeration.
func newTestState(t *testing.T, p *Problem) *searchState {
	t.Helper()
	return newSearchState(p, buildCandidates(p, 0), nil)
}
