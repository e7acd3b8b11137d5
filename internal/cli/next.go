package cli

import (
	"encoding/json"
	"fmt"

	"github.com/smokyabdulrahman/vakit/internal/display"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/spf13/cobra"
)

var flagFormat string

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nSuitable for status bars; prints " + display.Placeholder + " when no schedule is available.",
		Args:  cobra.NoArgs,
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, countdown, or a custom Go template")

	return cmd
}

// nextJSON is the JSON output structure for the next command.
type nextJSON struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Countdown string `json:"countdown"`
	Seconds   int    `json:"seconds"`
}

func runNext(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	now := nowFunc()
	layout := timeLayout(cmd)

	c, ok := prayer.ComputeForSchedule(currentSchedule(cmd, now), now)
	r, at := c.Remaining, c.Target

	if FlagJSON {
		if !ok {
			fmt.Fprintln(out, "null")
			return nil
		}
		data, err := json.MarshalIndent(nextJSON{
			Prayer:    r.Next.DisplayName(),
			Time:      at.Format(layout),
			Remaining: prayer.FormatRemaining(r.Duration()),
			Countdown: r.Clock(),
			Seconds:   int(r.Duration().Seconds()),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if !ok {
		fmt.Fprint(out, display.Placeholder)
		return nil
	}
	fmt.Fprint(out, prayer.FormatOutput(r, at, flagFormat, layout))
	return nil
}
