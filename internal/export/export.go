// Package export renders solved schedules into exchange formats: an .xlsx
// workbook for theatre coordinators and an iCalendar feed for staff
// calendars. Both writers are pure: bytes in, bytes out, no I/O.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"github.com/apoorvpandey048/theatre-scheduler/internal/instance"
	"github.com/apoorvpandey048/theatre-scheduler/pkg/theatre"
)

var (
	// ErrEmptySchedule is returned when there is nothing to export.
	ErrEmptySchedule = errors.New("schedule is empty")
	// ErrNoDay is returned by Calendar when the instance has no operating
	// day to anchor event times on.
	ErrNoDay = errors.New("instance has no day, calendar export needs one")
	// ErrBadSlotLabel is returned by Calendar when a needed slot label is
	// not a 24-hour clock time.
	ErrBadSlotLabel = errors.New("slot label is not a clock time")
)

const (
	gridSheet    = "Schedule"
	summarySheet = "Surgeries"
)

// Workbook renders the schedule as an .xlsx workbook with two sheets: a
// staff-by-slot occupancy grid and a per-surgery summary.
func Workbook(in *instance.Instance, sched theatre.Schedule) ([]byte, error) {
	if len(sched) == 0 {
		return nil, ErrEmptySchedule
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(gridSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Occupancy index: staff ID + slot → surgery ID.
	surgeryByID := make(map[string]theatre.Surgery, len(in.Surgeries))
	for _, s := range in.Surgeries {
		surgeryByID[s.ID] = s
	}
	occupied := make(map[string]map[int]string, len(in.Staff))
	for surgeryID, pl := range sched {
		dur := surgeryByID[surgeryID].Duration
		for _, staffID := range pl.Staff {
			if occupied[staffID] == nil {
				occupied[staffID] = make(map[int]string)
			}
			for s := pl.Start; s < pl.Start+dur; s++ {
				occupied[staffID][s] = surgeryID
			}
		}
	}

	// Grid sheet: slots as columns, staff as rows.
	f.SetColWidth(gridSheet, "A", "A", 16)
	if in.TotalSlots > 0 {
		f.SetColWidth(gridSheet, colName(1), colName(in.TotalSlots), 12)
	}
	f.SetCellValue(gridSheet, cell(colName(0), 1), "Staff")
	for s := 0; s < in.TotalSlots; s++ {
		f.SetCellValue(gridSheet, cell(colName(s+1), 1), in.Label(s))
	}
	f.SetCellStyle(gridSheet, cell(colName(0), 1), cell(colName(in.TotalSlots), 1), headerStyle)

	row := 2
	for _, m := range in.Staff {
		f.SetCellValue(gridSheet, cell(colName(0), row), m.ID)
		for s := 0; s < in.TotalSlots; s++ {
			if surgeryID, ok := occupied[m.ID][s]; ok {
				f.SetCellValue(gridSheet, cell(colName(s+1), row), surgeryID)
			}
		}
		row++
	}

	// Summary sheet: one row per surgery, sorted by identifier.
	headers := []string{"Surgery", "Team", "Start", "End", "Duration"}
	for i, h := range headers {
		f.SetCellValue(summarySheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(summarySheet, cell(colName(0), 1), cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(summarySheet, "A", "B", 18)

	ids := make([]string, 0, len(sched))
	for id := range sched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	row = 2
	for _, id := range ids {
		pl := sched[id]
		dur := surgeryByID[id].Duration
		f.SetCellValue(summarySheet, cell(colName(0), row), id)
		f.SetCellValue(summarySheet, cell(colName(1), row), joinIDs(pl.Staff))
		f.SetCellValue(summarySheet, cell(colName(2), row), in.Label(pl.Start))
		f.SetCellValue(summarySheet, cell(colName(3), row), endLabel(in, pl.Start, dur))
		f.SetCellValue(summarySheet, cell(colName(4), row), dur)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Calendar renders the schedule as an iCalendar document with one event per
// (surgery, staff member) pair, so each member's feed carries exactly their
// own bookings. Event times come from the instance day, clock-style slot
// labels, and the slot length.
func Calendar(in *instance.Instance, sched theatre.Schedule) ([]byte, error) {
	if len(sched) == 0 {
		return nil, ErrEmptySchedule
	}
	if in.Day.IsZero() {
		return nil, ErrNoDay
	}

	surgeryByID := make(map[string]theatre.Surgery, len(in.Surgeries))
	for _, s := range in.Surgeries {
		surgeryByID[s.ID] = s
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//theatre-scheduler//EN")

	ids := make([]string, 0, len(sched))
	for id := range sched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := time.Now().UTC()
	for _, id := range ids {
		pl := sched[id]
		start, ok := in.SlotTime(pl.Start)
		if !ok {
			return nil, fmt.Errorf("%w: slot %q", ErrBadSlotLabel, in.Label(pl.Start))
		}
		dur := surgeryByID[id].Duration
		end := start.Add(time.Duration(dur*in.SlotMinutes) * time.Minute)

		for _, staffID := range pl.Staff {
			ev := cal.AddEvent(fmt.Sprintf("%s-%s@theatre-scheduler", id, staffID))
			ev.SetCreatedTime(now)
			ev.SetDtStampTime(now)
			ev.SetStartAt(start)
			ev.SetEndAt(end)
			ev.SetSummary(fmt.Sprintf("Surgery %s", id))
			ev.SetDescription(fmt.Sprintf("Staff: %s. Team: %s.", staffID, joinIDs(pl.Staff)))
		}
	}

	return []byte(cal.Serialize()), nil
}

// endLabel names the slot right after the occupied interval, falling back
// to the index past the horizon's last label.
func endLabel(in *instance.Instance, start, duration int) string {
	return in.Label(start + duration)
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
