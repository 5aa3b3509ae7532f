// Package instance loads operating-day problem files. Callers describe a
// day with labeled time slots (for example "08:00"), staff, and surgeries
// in YAML; the loader resolves labels to slot indices and hands the engine
// plain index-based records. The label table is kept so schedules can be
// rendered and exported back in the day's own vocabulary.
package instance

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/apoorvpandey048/theatre-scheduler/pkg/theatre"
)

// ErrInvalidInstance is wrapped by every instance-file error, keeping file
// problems distinguishable from the engine's own input validation.
var ErrInvalidInstance = errors.New("invalid instance")

// defaultSlotMinutes is assumed when a file does not state slot length.
const defaultSlotMinutes = 60

const dayLayout = "2006-01-02"

// fileInstance models the YAML document.
type fileInstance struct {
	Day         string        `yaml:"day,omitempty"`
	SlotMinutes int           `yaml:"slot_minutes,omitempty"`
	Slots       []string      `yaml:"slots"`
	Staff       []fileStaff   `yaml:"staff"`
	Surgeries   []fileSurgery `yaml:"surgeries"`
}

type fileStaff struct {
	ID        string   `yaml:"id"`
	Roles     []string `yaml:"roles"`
	Available []string `yaml:"available,omitempty"`
	Capacity  int      `yaml:"capacity,omitempty"`
}

type fileSurgery struct {
	ID       string   `yaml:"id"`
	Roles    []string `yaml:"roles"`
	Duration int      `yaml:"duration"`
	Eligible []string `yaml:"eligible,omitempty"`
}

// Instance is a resolved problem file: engine-ready records plus the label
// table and calendar context the exporters use.
type Instance struct {
	// Day is the operating day, zero when the file omits it. Calendar
	// export requires it.
	Day time.Time
	// SlotMinutes is the real-time length of one slot.
	SlotMinutes int
	// Labels maps slot index to the file's slot label.
	Labels []string

	Surgeries  []theatre.Surgery
	Staff      []theatre.StaffMember
	TotalSlots int
}

// Load reads and parses an instance file.
func Load(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instance: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML instance document and resolves slot labels.
//
// Defaults: slot_minutes 60; omitted staff availability means the whole
// day; omitted staff capacity means as many slot-units as the day has;
// omitted surgery eligibility means any start slot. Unknown or duplicate
// slot labels and an empty slot table are errors. Engine-level validation
// (durations, roles, identifiers) happens later in Problem.
func Parse(data []byte) (*Instance, error) {
	var f fileInstance
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstance, err)
	}

	if len(f.Slots) == 0 {
		return nil, fmt.Errorf("%w: slot table must not be empty", ErrInvalidInstance)
	}
	index := make(map[string]int, len(f.Slots))
	for i, label := range f.Slots {
		if label == "" {
			return nil, fmt.Errorf("%w: slot %d has an empty label", ErrInvalidInstance, i)
		}
		if _, dup := index[label]; dup {
			return nil, fmt.Errorf("%w: duplicate slot label %q", ErrInvalidInstance, label)
		}
		index[label] = i
	}

	in := &Instance{
		SlotMinutes: f.SlotMinutes,
		Labels:      append([]string(nil), f.Slots...),
		TotalSlots:  len(f.Slots),
	}
	if in.SlotMinutes <= 0 {
		in.SlotMinutes = defaultSlotMinutes
	}
	if f.Day != "" {
		day, err := time.Parse(dayLayout, f.Day)
		if err != nil {
			return nil, fmt.Errorf("%w: day %q: want YYYY-MM-DD", ErrInvalidInstance, f.Day)
		}
		in.Day = day
	}

	for _, m := range f.Staff {
		avail, err := resolveLabels(index, m.Available, "staff", m.ID)
		if err != nil {
			return nil, err
		}
		capacity := m.Capacity
		if capacity == 0 {
			capacity = in.TotalSlots
		}
		in.Staff = append(in.Staff, theatre.StaffMember{
			ID:           m.ID,
			Roles:        m.Roles,
			Availability: avail,
			Capacity:     capacity,
		})
	}

	for _, s := range f.Surgeries {
		eligible, err := resolveLabels(index, s.Eligible, "surgery", s.ID)
		if err != nil {
			return nil, err
		}
		in.Surgeries = append(in.Surgeries, theatre.Surgery{
			ID:            s.ID,
			Duration:      s.Duration,
			Roles:         s.Roles,
			EligibleSlots: eligible,
		})
	}

	return in, nil
}

// resolveLabels maps slot labels to indices. Empty input stays empty, which
// the engine reads as unrestricted.
func resolveLabels(index map[string]int, labels []string, kind, id string) ([]int, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	out := make([]int, 0, len(labels))
	for _, label := range labels {
		i, ok := index[label]
		if !ok {
			return nil, fmt.Errorf("%w: %s %q references unknown slot label %q", ErrInvalidInstance, kind, id, label)
		}
		out = append(out, i)
	}
	return out, nil
}

// Problem builds the validated engine instance.
func (in *Instance) Problem() (*theatre.Problem, error) {
	return theatre.NewProblem(in.Surgeries, in.Staff, in.TotalSlots)
}

// Label returns the label of a slot index, or its decimal form when the
// index is out of range.
func (in *Instance) Label(slot int) string {
	if slot < 0 || slot >= len(in.Labels) {
		return fmt.Sprintf("%d", slot)
	}
	return in.Labels[slot]
}

// SlotTime resolves a slot index to wall-clock time on the instance day.
// It requires a day and a label in 24-hour "15:04" form; ok is false
// otherwise.
func (in *Instance) SlotTime(slot int) (t time.Time, ok bool) {
	if in.Day.IsZero() || slot < 0 || slot >= len(in.Labels) {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", in.Labels[slot])
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(in.Day.Year(), in.Day.Month(), in.Day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.UTC), true
}
