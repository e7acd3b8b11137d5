package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/smokyabdulrahman/vakit/internal/display"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/spf13/cobra"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer schedule",
		Long:  "Display today's six prayer times with the current and next prayer marked.\nThis is also what running vakit without a subcommand does.",
		Args:  cobra.NoArgs,
		RunE:  runToday,
	}
}

func runToday(cmd *cobra.Command, args []string) error {
	now := nowFunc()
	layout := timeLayout(cmd)

	c, ok := prayer.ComputeForSchedule(currentSchedule(cmd, now), now)

	if FlagJSON {
		return printTodayJSON(cmd.OutOrStdout(), c.Today, c.Remaining, c.Target, ok, layout)
	}

	printTodayRich(cmd.OutOrStdout(), c.Today, c.Remaining, c.Target, ok, layout)
	return nil
}

// printTodayRich renders the colored terminal output for today's prayer schedule.
func printTodayRich(w io.Writer, today *prayer.Record, r prayer.Remaining, at prayer.TimeOfDay, ok bool, layout string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)

	if loc := loadedConfig.Location.String(); loc != "" {
		fmt.Fprintf(w, "  %s\n", loc)
	}

	if today == nil {
		fmt.Fprintf(w, "  %s\n\n", display.Gray("No prayer times for today."))
		fmt.Fprintf(w, "  %s\n\n", display.CountdownLine(r, at, false, layout))
		return
	}

	if today.DateLong != "" {
		fmt.Fprintf(w, "  %s\n", today.DateLong)
	}
	fmt.Fprintln(w)

	// Without tomorrow's record there is no countdown, but today's times
	// are still worth showing unmarked.
	fmt.Fprint(w, display.DayCard(*today, prayer.CurrentSlot(r.Next), r.Next, ok, layout))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", display.CountdownLine(r, at, ok, layout))
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location string            `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current,omitempty"`
	Next     *todayJSONNext    `json:"next"`
}

type todayJSONDate struct {
	Key       string `json:"key"`
	Gregorian string `json:"gregorian,omitempty"`
	Hijri     string `json:"hijri,omitempty"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Countdown string `json:"countdown"`
}

// printTodayJSON renders structured JSON output. A missing record renders
// as null.
func printTodayJSON(w io.Writer, today *prayer.Record, r prayer.Remaining, at prayer.TimeOfDay, ok bool, layout string) error {
	if today == nil {
		fmt.Fprintln(w, "null")
		return nil
	}

	out := todayJSON{
		Location: loadedConfig.Location.String(),
		Date: todayJSONDate{
			Key:       today.Date,
			Gregorian: today.DateLong,
			Hijri:     today.HijriLong,
		},
		Timings: timingsMap(*today, layout),
	}

	if ok {
		out.Current = strings.ToLower(prayer.CurrentSlot(r.Next).DisplayName())
		out.Next = &todayJSONNext{
			Prayer:    strings.ToLower(r.Next.DisplayName()),
			Time:      at.Format(layout),
			Remaining: prayer.FormatRemaining(r.Duration()),
			Countdown: r.Clock(),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// timingsMap keys a record's times by lower-case slot name.
func timingsMap(rec prayer.Record, layout string) map[string]string {
	m := make(map[string]string, len(prayer.DailySlots))
	for _, s := range prayer.DailySlots {
		m[strings.ToLower(s.DisplayName())] = rec.Time(s).Format(layout)
	}
	return m
}
