package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

// Placeholder is shown where a time cannot be computed.
const Placeholder = "--:--"

// CountdownLine renders the live line, e.g. "Maghrib 18:20 in 00:00:30".
// With ok false it renders the placeholder.
func CountdownLine(r prayer.Remaining, at prayer.TimeOfDay, ok bool, layout string) string {
	if !ok {
		return Gray("Next prayer " + Placeholder)
	}
	return fmt.Sprintf("%s %s in %s",
		Accent(r.Next.DisplayName()),
		at.Format(layout),
		Bold(r.Clock()))
}

// DayCard renders one day's six times in a column. current is the slot in
// effect and next the one being counted down to; pass marks false to show
// the day without highlights, e.g. for a day other than today.
func DayCard(rec prayer.Record, current, next prayer.Slot, marks bool, layout string) string {
	var sb strings.Builder

	header := rec.Date
	if rec.HijriLong != "" {
		header += "  " + Gray(rec.HijriLong)
	}
	sb.WriteString("  " + Bold(header) + "\n\n")

	for _, s := range prayer.DailySlots {
		name := fmt.Sprintf("%-8s", s.DisplayName())
		at := rec.Time(s).Format(layout)
		line := name + "  " + at

		passed := next == prayer.FajrNextDay || s < next
		switch {
		case !marks:
		case s == next:
			line = Accent(line + "  ◀ next")
		case s == current && passed:
			line = Green(line)
		case passed:
			line = Dim(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

// ScheduleTable lays records out one day per row and highlights todayKey.
func ScheduleTable(records []prayer.Record, todayKey, layout string) *Table {
	headers := []string{"Date"}
	for _, s := range prayer.DailySlots {
		headers = append(headers, s.DisplayName())
	}

	t := NewTable(headers)
	for i, rec := range records {
		row := []string{dayLabel(rec)}
		for _, at := range rec.Times() {
			row = append(row, at.Format(layout))
		}
		t.AddRow(row)
		if rec.Date == todayKey {
			t.SetHighlightRow(i)
		}
	}
	return t
}

// dayLabel renders "Tue 10 Mar", falling back to the raw key.
func dayLabel(rec prayer.Record) string {
	d, err := rec.Day(time.UTC)
	if err != nil {
		return rec.Date
	}
	return d.Format("Mon 02 Jan")
}
