package prayer

import (
	"fmt"
	"time"
)

// Remaining is the countdown to the next slot. It is recomputed every tick.
type Remaining struct {
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Next    Slot `json:"next"`
}

// ComputeRemaining finds the next slot after now and the time left until it.
//
// The probes are today's six times followed by tomorrow's Fajr shifted by 24
// hours. A probe whose hour:minute is at or before now's hour:minute counts as
// passed. now is read in its own location; the function never reads the clock.
// It reports false when either record is missing.
func ComputeRemaining(today, tomorrow *Record, now time.Time) (Remaining, bool) {
	if today == nil || tomorrow == nil {
		return Remaining{}, false
	}

	probes := [7]TimeOfDay{
		today.Fajr, today.Sunrise, today.Dhuhr, today.Asr, today.Maghrib, today.Isha,
		tomorrow.Fajr,
	}
	nh, nm, ns := now.Clock()

	for i, p := range probes {
		ph := p.Hour
		if Slot(i) == FajrNextDay {
			ph += 24
		}

		if nh > ph || (nh == ph && nm >= p.Minute) {
			continue
		}

		left := (ph*3600 + p.Minute*60) - (nh*3600 + nm*60 + ns)
		return Remaining{
			Hours:   left / 3600,
			Minutes: (left / 60) % 60,
			Seconds: left % 60,
			Next:    Slot(i),
		}, true
	}

	return Remaining{Next: Fajr}, true
}

// Countdown is a Remaining together with the records it was computed from.
type Countdown struct {
	Remaining Remaining
	// Target is the clock time of Remaining.Next.
	Target   TimeOfDay
	TodayKey string
	Today    *Record
	Tomorrow *Record
}

// ComputeForSchedule looks up today's and tomorrow's records by their UTC
// date keys and runs ComputeRemaining against now. The records and keys are
// filled in even when it reports false.
func ComputeForSchedule(s Schedule, now time.Time) (Countdown, bool) {
	todayKey, tomorrowKey := DayKeys(now)
	c := Countdown{TodayKey: todayKey}
	c.Today, _ = s.Lookup(todayKey)
	c.Tomorrow, _ = s.Lookup(tomorrowKey)

	r, ok := ComputeRemaining(c.Today, c.Tomorrow, now)
	if !ok {
		return c, false
	}
	c.Remaining = r
	c.Target, ok = TimeFor(c.Today, c.Tomorrow, r.Next)
	return c, ok
}

// TotalMinutes returns the whole minutes left, ignoring seconds.
func (r Remaining) TotalMinutes() int {
	return r.Hours*60 + r.Minutes
}

// Duration converts the countdown to a time.Duration.
func (r Remaining) Duration() time.Duration {
	return time.Duration(r.Hours)*time.Hour +
		time.Duration(r.Minutes)*time.Minute +
		time.Duration(r.Seconds)*time.Second
}

// Clock renders the countdown as HH:MM:SS.
func (r Remaining) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02d", r.Hours, r.Minutes, r.Seconds)
}

func (r Remaining) String() string {
	return r.Next.DisplayName() + " " + r.Clock()
}
