package prayer

import (
	"reflect"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// DateKey / DayKeys
// ---------------------------------------------------------------------------

func TestDateKey_ZeroPadded(t *testing.T) {
	got := DateKey(time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC))
	if got != "05.01.2026" {
		t.Errorf("DateKey() = %q, want %q", got, "05.01.2026")
	}
}

func TestDayKeys(t *testing.T) {
	tests := []struct {
		name         string
		now          time.Time
		today, tmrw string
	}{
		{"plain day", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), "10.03.2026", "11.03.2026"},
		{"month end", time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC), "28.02.2026", "01.03.2026"},
		{"year end", time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), "31.12.2026", "01.01.2027"},
		{"leap day", time.Date(2028, 2, 28, 8, 0, 0, 0, time.UTC), "28.02.2028", "29.02.2028"},
		{
			"local after midnight is still yesterday in UTC",
			time.Date(2026, 3, 10, 2, 0, 0, 0, time.FixedZone("TRT", 3*60*60)),
			"09.03.2026", "10.03.2026",
		},
		{
			"local before midnight is already tomorrow in UTC",
			time.Date(2026, 3, 10, 22, 0, 0, 0, time.FixedZone("EST", -5*60*60)),
			"11.03.2026", "12.03.2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today, tmrw := DayKeys(tt.now)
			if today != tt.today || tmrw != tt.tmrw {
				t.Errorf("DayKeys() = (%q, %q), want (%q, %q)", today, tmrw, tt.today, tt.tmrw)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// IsScheduleValid
// ---------------------------------------------------------------------------

func TestIsScheduleValid(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		keys []string
		want bool
	}{
		{"empty", nil, false},
		{"only today", []string{"10.03.2026"}, false},
		{"only tomorrow", []string{"11.03.2026"}, false},
		{"today and tomorrow", []string{"10.03.2026", "11.03.2026"}, true},
		{"whole month", []string{"09.03.2026", "10.03.2026", "11.03.2026", "12.03.2026"}, true},
		{"stale month", []string{"08.03.2026", "09.03.2026"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Schedule{}
			for _, k := range tt.keys {
				// Contents are irrelevant to validity.
				s[k] = Record{}
			}
			if got := IsScheduleValid(s, now); got != tt.want {
				t.Errorf("IsScheduleValid(%v) = %v, want %v", tt.keys, got, tt.want)
			}
		})
	}
}

func TestIsScheduleValid_NilSchedule(t *testing.T) {
	if IsScheduleValid(nil, time.Now()) {
		t.Error("nil schedule must be invalid")
	}
}

// ---------------------------------------------------------------------------
// Schedule
// ---------------------------------------------------------------------------

func TestNewSchedule_KeysByDate(t *testing.T) {
	s := NewSchedule([]Record{*sampleDay(), *sampleNextDay()})

	if len(s) != 2 {
		t.Fatalf("len = %d, want 2", len(s))
	}
	r, ok := s.Lookup("11.03.2026")
	if !ok {
		t.Fatal("missing 11.03.2026")
	}
	if r.Fajr != MustTime("05:10") {
		t.Errorf("Fajr = %s, want 05:10", r.Fajr)
	}
}

func TestNewSchedule_LaterDuplicateWins(t *testing.T) {
	a := *sampleDay()
	b := *sampleDay()
	b.Isha = MustTime("20:00")

	s := NewSchedule([]Record{a, b})
	if got := s["10.03.2026"].Isha; got != MustTime("20:00") {
		t.Errorf("Isha = %s, want 20:00", got)
	}
}

func TestSchedule_LookupReturnsCopy(t *testing.T) {
	s := NewSchedule([]Record{*sampleDay()})
	r, _ := s.Lookup("10.03.2026")
	r.Fajr = MustTime("01:00")

	if s["10.03.2026"].Fajr != MustTime("05:12") {
		t.Error("mutating a looked-up record changed the schedule")
	}
	if _, ok := s.Lookup("01.01.1970"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestSchedule_Keys(t *testing.T) {
	s := Schedule{
		"01.04.2026": {},
		"bogus":      {},
		"31.03.2026": {},
		"02.01.2027": {},
	}
	want := []string{"31.03.2026", "01.04.2026", "02.01.2027", "bogus"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestSchedule_Range(t *testing.T) {
	s := NewSchedule([]Record{*sampleDay(), *sampleNextDay()})
	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	got := s.Range(from, 5)
	if len(got) != 2 {
		t.Fatalf("Range returned %d records, want 2", len(got))
	}
	if got[0].Date != "10.03.2026" || got[1].Date != "11.03.2026" {
		t.Errorf("Range order = %s, %s", got[0].Date, got[1].Date)
	}
}

func TestSchedule_Clone(t *testing.T) {
	s := NewSchedule([]Record{*sampleDay()})
	c := s.Clone()
	delete(c, "10.03.2026")

	if _, ok := s["10.03.2026"]; !ok {
		t.Error("deleting from a clone affected the original")
	}
	if Schedule(nil).Clone() != nil {
		t.Error("clone of nil should be nil")
	}
}
