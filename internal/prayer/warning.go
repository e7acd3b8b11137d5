package prayer

import "fmt"

// Warning threshold bounds, in minutes.
const (
	DefaultWarningMinutes = 15
	MinWarningMinutes     = 1
	MaxWarningMinutes     = 120
)

// Warning is raised once when the countdown reaches the configured threshold.
type Warning struct {
	Slot    Slot `json:"slot"`
	Minutes int  `json:"minutes"`
}

// ShouldWarn reports whether r sits exactly on the threshold: the whole
// minutes match and the seconds are zero. A descending countdown satisfies
// this for a single tick.
func ShouldWarn(r Remaining, warningMinutes int) bool {
	return r.TotalMinutes() == warningMinutes && r.Seconds == 0
}

// ValidWarningMinutes reports whether n is an accepted threshold.
func ValidWarningMinutes(n int) bool {
	return n >= MinWarningMinutes && n <= MaxWarningMinutes
}

// Title is the notification title, the prayer being approached.
func (w Warning) Title() string {
	return w.Slot.DisplayName()
}

// Message is the notification body.
func (w Warning) Message() string {
	return fmt.Sprintf("%d minutes left!", w.Minutes)
}
