// Package render draws schedules and infeasibility reports for terminals.
// The grid mirrors the workbook layout: staff as rows, slots as columns,
// each surgery in its own color so a day reads at a glance.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/apoorvpandey048/theatre-scheduler/internal/instance"
	"github.com/apoorvpandey048/theatre-scheduler/pkg/theatre"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)

	staffStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Padding(0, 1)

	reasonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	statusStyle = lipgloss.NewStyle().Bold(true)

	// surgeryPalette cycles across surgeries sorted by identifier, so the
	// same instance always colors the same way.
	surgeryPalette = []lipgloss.Color{
		"#59C9A5", "#5B8DEF", "#D78CDE", "#E8A33D", "#6BC5E8", "#C9725B",
	}
)

// Schedule renders the staff-by-slot occupancy grid of a solved day.
func Schedule(in *instance.Instance, sched theatre.Schedule) string {
	surgeryByID := make(map[string]theatre.Surgery, len(in.Surgeries))
	ids := make([]string, 0, len(in.Surgeries))
	for _, s := range in.Surgeries {
		surgeryByID[s.ID] = s
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	colorOf := make(map[string]lipgloss.Style, len(ids))
	for i, id := range ids {
		colorOf[id] = lipgloss.NewStyle().
			Foreground(surgeryPalette[i%len(surgeryPalette)]).
			Padding(0, 1)
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

	// Column widths from content so labels and identifiers never clip.
	staffWidth := len("Staff")
	for _, m := range in.Staff {
		if len(m.ID) > staffWidth {
			staffWidth = len(m.ID)
		}
	}
	colWidth := make([]int, in.TotalSlots)
	for s := 0; s < in.TotalSlots; s++ {
		colWidth[s] = len(in.Label(s))
		for _, m := range in.Staff {
			if id, ok := occupied[m.ID][s]; ok && len(id) > colWidth[s] {
				colWidth[s] = len(id)
			}
		}
	}

	var b strings.Builder
	cells := make([]string, 0, in.TotalSlots+1)
	cells = append(cells, headerStyle.Width(staffWidth+2).Render("Staff"))
	for s := 0; s < in.TotalSlots; s++ {
		cells = append(cells, headerStyle.Width(colWidth[s]+2).Render(in.Label(s)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	b.WriteString("\n")

	for _, m := range in.Staff {
		cells = cells[:0]
		cells = append(cells, staffStyle.Width(staffWidth+2).Render(m.ID))
		for s := 0; s < in.TotalSlots; s++ {
			if id, ok := occupied[m.ID][s]; ok {
				cells = append(cells, colorOf[id].Width(colWidth[s]+2).Render(id))
			} else {
				cells = append(cells, emptyStyle.Width(colWidth[s]+2).Render("·"))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

// Reasons renders the per-surgery infeasibility tags, sorted by surgery.
func Reasons(reasons map[string]theatre.Reason) string {
	ids := make([]string, 0, len(reasons))
	for id := range reasons {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(reasonStyle.Render("No schedule exists"))
	b.WriteString("\n")
	for _, id := range ids {
		b.WriteString(fmt.Sprintf("  %s: %s\n", id, reasons[id]))
	}
	return b.String()
}

// Summary renders a one-line outcome with the run's statistics.
func Summary(res *theatre.Result) string {
	return fmt.Sprintf("%s  (%s)",
		statusStyle.Render(strings.ToUpper(string(res.Status))),
		res.Stats)
}
