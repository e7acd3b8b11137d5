package cli

import (
	"errors"
	"fmt"

	"github.com/smokyabdulrahman/vakit/internal/countdown"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch a new month of prayer times",
		Long:  "Fetch the monthly schedule for the selected district and replace the stored one,\neven when the stored schedule still covers today and tomorrow.",
		Args:  cobra.NoArgs,
		RunE:  runRefresh,
	}
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if FlagOffline {
		return errors.New("refresh needs the network; drop --offline")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, countdown.StatusFetching)

	n, err := refreshSchedule(cmd.Context())
	if err != nil {
		var se *saveError
		if errors.As(err, &se) {
			return fmt.Errorf("%s %w", countdown.StatusSaveFailed, err)
		}
		return fmt.Errorf("%s %w", countdown.StatusFetchFailed, err)
	}

	fmt.Fprintf(out, "%s %d days stored.\n", countdown.StatusUpdated, n)
	if !prayer.IsScheduleValid(loadedConfig.PrayerTimes, nowFunc()) {
		warnf(cmd, "%s", countdown.StatusOutdated)
	}
	return nil
}
