package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/apoorvpandey048/theatre-scheduler/internal/instance"
	"github.com/apoorvpandey048/theatre-scheduler/pkg/theatre"
)

const dayDoc = `
day: "2026-03-02"
slot_minutes: 30
slots: ["08:00", "08:30", "09:00", "09:30"]
staff:
  - id: dr-a
    roles: [surgeon]
  - id: nurse-b
    roles: [nurse]
surgeries:
  - id: op-a
    roles: [surgeon, nurse]
    duration: 2
  - id: op-b
    roles: [surgeon]
    duration: 1
`

func mustInstance(t *testing.T, doc string) *instance.Instance {
	t.Helper()
	in, err := instance.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return in
}

func daySchedule() theatre.Schedule {
	return theatre.Schedule{
		"op-a": {Staff: []string{"dr-a", "nurse-b"}, Start: 0},
		"op-b": {Staff: []string{"dr-a"}, Start: 2},
	}
}

func TestWorkbook(t *testing.T) {
	in := mustInstance(t, dayDoc)
	data, err := Workbook(in, daySchedule())
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	have := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		have[name] = true
	}
	if !have["Schedule"] || !have["Surgeries"] || have["Sheet1"] {
		t.Fatalf("GetSheetList() = %v, want exactly Schedule and Surgeries", f.GetSheetList())
	}

	read := func(sheet, axis string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, axis)
		if err != nil {
			t.Fatalf("GetCellValue(%s, %s) error = %v", sheet, axis, err)
		}
		return v
	}

	// Grid sheet: header row carries slot labels, staff rows carry the
	// surgery occupying each slot.
	gridWant := map[string]string{
		"A1": "Staff", "B1": "08:00", "C1": "08:30", "D1": "09:00", "E1": "09:30",
		"A2": "dr-a", "B2": "op-a", "C2": "op-a", "D2": "op-b", "E2": "",
		"A3": "nurse-b", "B3": "op-a", "C3": "op-a", "D3": "",
	}
	for axis, want := range gridWant {
		if got := read("Schedule", axis); got != want {
			t.Errorf("Schedule!%s = %q, want %q", axis, got, want)
		}
	}

	// Summary sheet: surgeries in identifier order with label-based times.
	summaryWant := map[string]string{
		"A1": "Surgery", "B1": "Team", "C1": "Start", "D1": "End", "E1": "Duration",
		"A2": "op-a", "B2": "dr-a, nurse-b", "C2": "08:00", "D2": "09:00", "E2": "2",
		"A3": "op-b", "B3": "dr-a", "C3": "09:00", "D3": "09:30", "E3": "1",
	}
	for axis, want := range summaryWant {
		if got := read("Surgeries", axis); got != want {
			t.Errorf("Surgeries!%s = %q, want %q", axis, got, want)
		}
	}
}

func TestWorkbook_EndPastHorizon(t *testing.T) {
	in := mustInstance(t, dayDoc)
	sched := theatre.Schedule{
		"op-a": {Staff: []string{"dr-a", "nurse-b"}, Start: 2},
	}
	data, err := Workbook(in, sched)
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	// Slot 2 + duration 2 ends at index 4, past the last label, so the
	// end column falls back to the bare index.
	got, err := f.GetCellValue("Surgeries", "D2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if got != "4" {
		t.Errorf("Surgeries!D2 = %q, want %q", got, "4")
	}
}

func TestWorkbook_EmptySchedule(t *testing.T) {
	in := mustInstance(t, dayDoc)
	if _, err := Workbook(in, nil); !errors.Is(err, ErrEmptySchedule) {
		t.Errorf("Workbook() error = %v, want ErrEmptySchedule", err)
	}
}

func TestCalendar(t *testing.T) {
	in := mustInstance(t, dayDoc)
	data, err := Calendar(in, daySchedule())
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	s := string(data)

	// One event per (surgery, staff) pair: two for op-a, one for op-b.
	if got := strings.Count(s, "BEGIN:VEVENT"); got != 3 {
		t.Errorf("BEGIN:VEVENT count = %d, want 3", got)
	}
	for _, want := range []string{
		"UID:op-a-dr-a@theatre-scheduler",
		"UID:op-a-nurse-b@theatre-scheduler",
		"UID:op-b-dr-a@theatre-scheduler",
		"DTSTART:20260302T080000Z",
		"DTEND:20260302T090000Z",
		"DTSTART:20260302T090000Z",
		"DTEND:20260302T093000Z",
		"SUMMARY:Surgery op-a",
		"SUMMARY:Surgery op-b",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("calendar missing %q", want)
		}
	}
}

func TestCalendar_NoDay(t *testing.T) {
	in := mustInstance(t, `
slots: ["08:00", "08:30", "09:00"]
staff:
  - id: dr-a
    roles: [surgeon]
surgeries:
  - id: op-a
    roles: [surgeon]
    duration: 1
`)
	sched := theatre.Schedule{"op-a": {Staff: []string{"dr-a"}, Start: 0}}
	if _, err := Calendar(in, sched); !errors.Is(err, ErrNoDay) {
		t.Errorf("Calendar() error = %v, want ErrNoDay", err)
	}
}

func TestCalendar_BadSlotLabel(t *testing.T) {
	in := mustInstance(t, `
day: "2026-03-02"
slots: ["morning", "afternoon"]
staff:
  - id: dr-a
    roles: [surgeon]
surgeries:
  - id: op-a
    roles: [surgeon]
    duration: 1
`)
	sched := theatre.Schedule{"op-a": {Staff: []string{"dr-a"}, Start: 0}}
	if _, err := Calendar(in, sched); !errors.Is(err, ErrBadSlotLabel) {
		t.Errorf("Calendar() error = %v, want ErrBadSlotLabel", err)
	}
}

func TestCalendar_EmptySchedule(t *testing.T) {
	in := mustInstance(t, dayDoc)
	if _, err := Calendar(in, theatre.Schedule{}); !errors.Is(err, ErrEmptySchedule) {
		t.Errorf("Calendar() error = %v, want ErrEmptySchedule", err)
	}
}
