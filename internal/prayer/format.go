package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Format constants for display modes.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
	FormatCountdown          = "countdown"
)

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // Prayer name, e.g. "Asr"
	ShortName string // Abbreviated name, e.g. "A"
	Time      string // Prayer time, e.g. "15:02" or "3:02 PM"
	Remaining string // e.g. "2h 15m"
	Countdown string // e.g. "02:15:09"
	Hours     int
	Minutes   int
	Seconds   int
}

// TimeLayout maps a configured time format ("12h" or "24h") to a Go layout.
func TimeLayout(timeFormat string) string {
	if timeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatOutput renders a countdown for a status line. at is the time of the
// targeted prayer and layout a Go time layout such as "15:04".
//
// If mode contains "{{", it is treated as a custom Go template.
// Available fields: .Name, .ShortName, .Time, .Remaining, .Countdown,
// .Hours, .Minutes, .Seconds
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Asr in 2h 15m"
func FormatOutput(r Remaining, at TimeOfDay, mode string, layout string) string {
	name := r.Next.DisplayName()
	short := r.Next.ShortName()
	remaining := FormatRemaining(r.Duration())
	timeStr := at.Format(layout)

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      name,
			ShortName: short,
			Time:      timeStr,
			Remaining: remaining,
			Countdown: r.Clock(),
			Hours:     r.Hours,
			Minutes:   r.Minutes,
			Seconds:   r.Seconds,
		})
	}

	switch mode {
	case FormatTimeRemaining:
		return remaining
	case FormatNextPrayerTime:
		return timeStr
	case FormatNameAndTime:
		return fmt.Sprintf("%s %s", name, timeStr)
	case FormatNameAndRemaining:
		return fmt.Sprintf("%s %s", name, remaining)
	case FormatShortNameAndTime:
		return fmt.Sprintf("%s %s", short, timeStr)
	case FormatShortNameAndRemain:
		return fmt.Sprintf("%s %s", short, remaining)
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", name, timeStr, remaining)
	case FormatCountdown:
		return fmt.Sprintf("%s %s", name, r.Clock())
	default:
		return fmt.Sprintf("%s %s", name, timeStr)
	}
}

// formatCustom executes a user-provided Go template string against the FormatData.
func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}
