package prayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned when a time-of-day string cannot be parsed.
var ErrInvalidTime = errors.New("invalid time of day")

// TimeOfDay is a wall-clock hour and minute with no date or zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM". A suffix after a space, such as " (+03)",
// is ignored.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: bad hour in %q", ErrInvalidTime, raw)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: bad minute in %q", ErrInvalidTime, raw)
	}

	return TimeOfDay{Hour: hour, Minute: min}, nil
}

// MustTime is ParseTimeOfDay for literals known to be valid. It panics otherwise.
func MustTime(raw string) TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Seconds returns the offset from midnight in seconds.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60
}

// Format renders the time with a Go layout such as "15:04" or "3:04 PM".
func (t TimeOfDay) Format(layout string) string {
	return time.Date(2000, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format(layout)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Record is one calendar day's schedule.
type Record struct {
	Fajr    TimeOfDay `json:"fajr"`
	Sunrise TimeOfDay `json:"sunrise"`
	Dhuhr   TimeOfDay `json:"dhuhr"`
	Asr     TimeOfDay `json:"asr"`
	Maghrib TimeOfDay `json:"maghrib"`
	Isha    TimeOfDay `json:"isha"`

	// Date is the DD.MM.YYYY schedule key.
	Date string `json:"date"`
	// DateLong is the localized Gregorian label, e.g. "10 Mart 2026 Salı".
	DateLong   string `json:"date_long,omitempty"`
	HijriShort string `json:"hijri_short,omitempty"`
	HijriLong  string `json:"hijri_long,omitempty"`
}

// Time returns the time of a slot. FajrNextDay maps to the record's Fajr.
func (r Record) Time(s Slot) TimeOfDay {
	switch s {
	case Sunrise:
		return r.Sunrise
	case Dhuhr:
		return r.Dhuhr
	case Asr:
		return r.Asr
	case Maghrib:
		return r.Maghrib
	case Isha:
		return r.Isha
	default:
		return r.Fajr
	}
}

// Times returns the six daily times in slot order.
func (r Record) Times() [6]TimeOfDay {
	return [6]TimeOfDay{r.Fajr, r.Sunrise, r.Dhuhr, r.Asr, r.Maghrib, r.Isha}
}

// Day parses the record's date key as midnight in loc.
func (r Record) Day(loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateKeyLayout, r.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", r.Date, err)
	}
	return d, nil
}

// TimeFor returns the time of the slot the countdown targets. FajrNextDay
// reads tomorrow's Fajr; every other slot reads today.
func TimeFor(today, tomorrow *Record, s Slot) (TimeOfDay, bool) {
	if s == FajrNextDay {
		if tomorrow == nil {
			return TimeOfDay{}, false
		}
		return tomorrow.Fajr, true
	}
	if today == nil {
		return TimeOfDay{}, false
	}
	return today.Time(s), true
}
