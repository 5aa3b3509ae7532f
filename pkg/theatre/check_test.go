package theatre

import (
	"strings"
	"testing"
)

func TestIntervalsOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"identical", 0, 2, 0, 2, true},
		{"contained", 0, 4, 1, 2, true},
		{"partial", 0, 2, 1, 3, true},
		{"touching is disjoint", 0, 2, 2, 4, false},
		{"disjoint", 0, 1, 3, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intervalsOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("intervalsOverlap(%d,%d,%d,%d) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			// Overlap is symmetric.
			if got := intervalsOverlap(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("intervalsOverlap is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestRolesCovered(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		covered  []string
		want     bool
	}{
		{"exact", []string{"a", "b"}, []string{"a", "b"}, true},
		{"superset", []string{"b"}, []string{"a", "b", "c"}, true},
		{"missing", []string{"a", "b"}, []string{"a"}, false},
		{"empty required", nil, nil, true},
		{"empty covered", []string{"a"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rolesCovered(tt.required, tt.covered); got != tt.want {
				t.Errorf("rolesCovered(%v, %v) = %v, want %v", tt.required, tt.covered, got, tt.want)
			}
		})
	}
}

func TestValidate_OK(t *testing.T) {
	surgeries := []Surgery{
		{ID: "op-a", Duration: 2, Roles: []string{"surgeon", "nurse"}},
		{ID: "op-b", Duration: 1, Roles: []string{"surgeon"}},
	}
	staff := []StaffMember{
		{ID: "s1", Roles: []string{"surgeon"}, Capacity: 3},
		{ID: "n1", Roles: []string{"nurse"}, Capacity: 2},
	}
	schedule := Schedule{
		"op-a": {Staff: []string{"n1", "s1"}, Start: 0},
		"op-b": {Staff: []string{"s1"}, Start: 2},
	}

	if err := Validate(schedule, surgeries, staff); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if !IsValid(schedule, surgeries, staff) {
		t.Error("IsValid() = false, want true")
	}
}

func TestValidate_Violations(t *testing.T) {
	surgeries := []Surgery{
		{ID: "op-a", Duration: 2, Roles: []string{"surgeon", "nurse"}},
		{ID: "op-b", Duration: 2, Roles: []string{"surgeon"}},
	}
	staff := []StaffMember{
		{ID: "s1", Roles: []string{"surgeon"}, Capacity: 4},
		{ID: "n1", Roles: []string{"nurse"}, Capacity: 4, Availability: []int{0, 1}},
	}
	valid := Schedule{
		"op-a": {Staff: []string{"n1", "s1"}, Start: 0},
		"op-b": {Staff: []string{"s1"}, Start: 2},
	}

	tests := []struct {
		name    string
		mutate  func(Schedule)
		wantSub string
	}{
		{
			"missing surgery",
			func(s Schedule) { delete(s, "op-b") },
			"missing from schedule",
		},
		{
			"unknown surgery placed",
			func(s Schedule) { s["ghost"] = Placement{Staff: []string{"s1"}, Start: 0} },
			"unknown surgery",
		},
		{
			"empty team",
			func(s Schedule) { s["op-b"] = Placement{Start: 2} },
			"empty staff assignment",
		},
		{
			"negative start",
			func(s Schedule) { s["op-b"] = Placement{Staff: []string{"s1"}, Start: -1} },
			"negative start",
		},
		{
			"unknown staff",
			func(s Schedule) { s["op-b"] = Placement{Staff: []string{"nobody"}, Start: 2} },
			"unknown staff",
		},
		{
			"member listed twice",
			func(s Schedule) { s["op-b"] = Placement{Staff: []string{"s1", "s1"}, Start: 2} },
			"assigned twice",
		},
		{
			"role not covered",
			func(s Schedule) { s["op-a"] = Placement{Staff: []string{"s1"}, Start: 0} },
			"do not cover required roles",
		},
		{
			"unavailable member",
			func(s Schedule) {
				s["op-a"] = Placement{Staff: []string{"n1", "s1"}, Start: 1}
				s["op-b"] = Placement{Staff: []string{"s1"}, Start: 3}
			},
			"unavailable",
		},
		{
			"temporal overlap",
			func(s Schedule) { s["op-b"] = Placement{Staff: []string{"s1"}, Start: 1} },
			"overlap in time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := make(Schedule, len(valid))
			for k, v := range valid {
				schedule[k] = v
			}
			tt.mutate(schedule)

			err := Validate(schedule, surgeries, staff)
			if err == nil {
				t.Fatal("Validate() error = nil, want violation")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_CapacityExceeded(t *testing.T) {
	surgeries := []Surgery{
		{ID: "op-a", Duration: 2, Roles: []string{"surgeon"}},
		{ID: "op-b", Duration: 2, Roles: []string{"surgeon"}},
	}
	staff := []StaffMember{{ID: "s1", Roles: []string{"surgeon"}, Capacity: 3}}
	schedule := Schedule{
		"op-a": {Staff: []string{"s1"}, Start: 0},
		"op-b": {Staff: []string{"s1"}, Start: 2},
	}

	err := Validate(schedule, surgeries, staff)
	if err == nil || !strings.Contains(err.Error(), "capacity") {
		t.Errorf("Validate() error = %v, want capacity violation", err)
	}
}

func TestValidate_ChecksAllAssignedRoles(t *testing.T) {
	// A member's whole role set counts toward coverage, not just the role
	// they were picked for.
	surgeries := []Surgery{{ID: "op", Duration: 1, Roles: []string{"surgeon", "nurse"}}}
	staff := []StaffMember{{ID: "both", Roles: []string{"nurse", "surgeon"}, Capacity: 1}}
	schedule := Schedule{"op": {Staff: []string{"both"}, Start: 0}}

	if err := Validate(schedule, surgeries, staff); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
