package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smokyabdulrahman/vakit/internal/display"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/spf13/cobra"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long:  "Query a specific prayer time for today, or across multiple days with --days.\n\nValid prayer names: Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha (or Imsak, Gunes, Ogle, Ikindi, Aksam, Yatsi)",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	slot, err := prayer.ParseSlot(args[0])
	if err != nil {
		return err
	}
	if slot == prayer.FajrNextDay {
		slot = prayer.Fajr
	}

	days := 1
	if flagQueryDays != "" {
		n, err := parseDays(flagQueryDays)
		if err != nil {
			return fmt.Errorf("invalid --days value: %w", err)
		}
		days = n
	}

	out := cmd.OutOrStdout()
	layout := timeLayout(cmd)
	records, todayKey := upcoming(cmd, days)
	name := slot.DisplayName()

	if FlagJSON {
		return printQueryJSON(out, records, slot, layout)
	}

	if days == 1 {
		if len(records) == 0 {
			fmt.Fprintf(out, "%s %s\n", name, display.Placeholder)
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", name, records[0].Time(slot).Format(layout))
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Boldf("%s Times: %d Days", name, days))
	fmt.Fprintln(out)

	tbl := display.NewTable([]string{"Date", name})
	for i, rec := range records {
		label := rec.Date
		if d, err := rec.Day(time.UTC); err == nil {
			label = d.Format("Mon 02 Jan")
		}
		tbl.AddRow([]string{label, rec.Time(slot).Format(layout)})
		if rec.Date == todayKey {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}

type queryJSON struct {
	Prayer string         `json:"prayer"`
	Days   []queryJSONDay `json:"days"`
}

type queryJSONDay struct {
	Date  string `json:"date"`
	Hijri string `json:"hijri,omitempty"`
	Time  string `json:"time"`
}

func printQueryJSON(w io.Writer, records []prayer.Record, slot prayer.Slot, layout string) error {
	out := queryJSON{
		Prayer: strings.ToLower(slot.DisplayName()),
		Days:   make([]queryJSONDay, 0, len(records)),
	}
	for _, rec := range records {
		out.Days = append(out.Days, queryJSONDay{
			Date:  rec.Date,
			Hijri: rec.HijriLong,
			Time:  rec.Time(slot).Format(layout),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
