package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/smokyabdulrahman/vakit/internal/display"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/spf13/cobra"
)

// maxListDays is about what one monthly fetch covers.
const maxListDays = 31

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  fmt.Sprintf("Display a grid of prayer times for N days (default: 7, at most %d).", maxListDays),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) > 0 {
				n, err := parseDays(args[0])
				if err != nil {
					return err
				}
				days = n
			}
			return runList(cmd, days)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'. Display a grid of prayer times for 7 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'. Display a grid of prayer times for 30 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 30)
		},
	}
}

// parseDays accepts a count, "week" or "month".
func parseDays(raw string) (int, error) {
	switch raw {
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxListDays {
		return 0, fmt.Errorf("invalid number of days: %q (must be 1 to %d, 'week', or 'month')", raw, maxListDays)
	}
	return n, nil
}

// upcoming returns the stored records for days dates starting today, warning
// when the schedule falls short.
func upcoming(cmd *cobra.Command, days int) ([]prayer.Record, string) {
	now := nowFunc()
	schedule := currentSchedule(cmd, now)

	todayKey, _ := prayer.DayKeys(now)
	records := schedule.Range(now.UTC(), days)
	if len(records) < days {
		warnf(cmd, "the stored schedule covers %d of %d days", len(records), days)
	}
	return records, todayKey
}

// runList is the handler for list, week and month.
func runList(cmd *cobra.Command, days int) error {
	out := cmd.OutOrStdout()
	layout := timeLayout(cmd)
	records, todayKey := upcoming(cmd, days)

	if FlagJSON {
		return printListJSON(out, records, layout)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Boldf("Prayer Times: %d Days", days))
	fmt.Fprintln(out)
	if loc := loadedConfig.Location.String(); loc != "" {
		fmt.Fprintf(out, "  %s\n\n", loc)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "  %s\n\n", display.Gray("No prayer times stored."))
		return nil
	}

	fmt.Fprint(out, display.ScheduleTable(records, todayKey, layout).Render())
	fmt.Fprintln(out)
	return nil
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location string        `json:"location"`
	Days     []listJSONDay `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri,omitempty"`
	Timings map[string]string `json:"timings"`
}

func printListJSON(w io.Writer, records []prayer.Record, layout string) error {
	out := listJSONOutput{
		Location: loadedConfig.Location.String(),
		Days:     make([]listJSONDay, 0, len(records)),
	}
	for _, rec := range records {
		out.Days = append(out.Days, listJSONDay{
			Date:    rec.Date,
			Hijri:   rec.HijriLong,
			Timings: timingsMap(rec, layout),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
