package prayer

import (
	"sort"
	"time"
)

// DateKeyLayout is the zero-padded DD.MM.YYYY layout of schedule keys.
const DateKeyLayout = "02.01.2006"

// Schedule maps date keys to daily records.
type Schedule map[string]Record

// DateKey formats t as a schedule key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// DayKeys returns the keys for today and tomorrow. Both are computed on the
// UTC calendar, not the local one.
func DayKeys(now time.Time) (today, tomorrow string) {
	u := now.UTC()
	return DateKey(u), DateKey(u.AddDate(0, 0, 1))
}

// NewSchedule builds a schedule from records keyed by their Date.
// A later record with the same key replaces an earlier one.
func NewSchedule(records []Record) Schedule {
	s := make(Schedule, len(records))
	for _, r := range records {
		s[r.Date] = r
	}
	return s
}

// Lookup returns a copy of the record stored under key.
func (s Schedule) Lookup(key string) (*Record, bool) {
	r, ok := s[key]
	if !ok {
		return nil, false
	}
	return &r, true
}

// Clone returns a shallow copy that can be handed to another goroutine.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	c := make(Schedule, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Keys returns the keys in calendar order. Keys that do not parse as dates
// sort after all valid ones.
func (s Schedule) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, errA := time.Parse(DateKeyLayout, keys[i])
		b, errB := time.Parse(DateKeyLayout, keys[j])
		switch {
		case errA != nil && errB != nil:
			return keys[i] < keys[j]
		case errA != nil:
			return false
		case errB != nil:
			return true
		default:
			return a.Before(b)
		}
	})
	return keys
}

// Range returns the records for up to days consecutive dates starting at
// from. Missing dates are skipped.
func (s Schedule) Range(from time.Time, days int) []Record {
	var out []Record
	for i := 0; i < days; i++ {
		if r, ok := s[DateKey(from.AddDate(0, 0, i))]; ok {
			out = append(out, r)
		}
	}
	return out
}

// IsScheduleValid reports whether the schedule holds both today's and
// tomorrow's record, dated on the UTC calendar.
func IsScheduleValid(s Schedule, now time.Time) bool {
	today, tomorrow := DayKeys(now)
	_, okToday := s[today]
	_, okTomorrow := s[tomorrow]
	return okToday && okTomorrow
}
