package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/vakit/internal/countdown"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/spf13/cobra"
)

// refreshSchedule fetches a new month for the selected district and stores
// it in the document. The new schedule stays in memory when saving fails;
// that failure is returned as a *saveError.
func refreshSchedule(ctx context.Context) (int, error) {
	districtID, err := loadedConfig.DistrictID()
	if err != nil {
		return 0, err
	}

	records, err := newClient().FetchMonthlySchedule(ctx, districtID)
	if err != nil {
		return 0, err
	}

	loadedConfig.ReplaceSchedule(prayer.NewSchedule(records))
	if err := backend.Save(ctx, loadedConfig); err != nil {
		return len(records), &saveError{err: err}
	}
	return len(records), nil
}

// saveError marks a refresh whose fetch succeeded but whose save did not.
type saveError struct{ err error }

func (e *saveError) Error() string { return e.err.Error() }
func (e *saveError) Unwrap() error { return e.err }

// currentSchedule returns the stored schedule, refreshing it first when it
// does not cover today and tomorrow. Refresh failures are printed as
// warnings; the caller renders whatever is available.
func currentSchedule(cmd *cobra.Command, now time.Time) prayer.Schedule {
	if FlagOffline || prayer.IsScheduleValid(loadedConfig.PrayerTimes, now) {
		return loadedConfig.PrayerTimes
	}

	if _, err := refreshSchedule(cmd.Context()); err != nil {
		warnRefresh(cmd, err)
	}
	return loadedConfig.PrayerTimes
}

func warnRefresh(cmd *cobra.Command, err error) {
	msg := countdown.StatusFetchFailed
	var se *saveError
	if errors.As(err, &se) {
		msg = countdown.StatusSaveFailed
	}
	warnf(cmd, "%s %v", msg, err)
}

// warnf prints a user-facing warning on stderr.
func warnf(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", a...)
}
