package prayer

import (
	"testing"
	"time"
)

// sampleDay is the schedule used across calculator tests.
func sampleDay() *Record {
	return &Record{
		Fajr:    MustTime("05:12"),
		Sunrise: MustTime("06:45"),
		Dhuhr:   MustTime("12:30"),
		Asr:     MustTime("15:50"),
		Maghrib: MustTime("18:20"),
		Isha:    MustTime("19:45"),
		Date:    "10.03.2026",
	}
}

func sampleNextDay() *Record {
	return &Record{
		Fajr:    MustTime("05:10"),
		Sunrise: MustTime("06:43"),
		Dhuhr:   MustTime("12:30"),
		Asr:     MustTime("15:51"),
		Maghrib: MustTime("18:21"),
		Isha:    MustTime("19:46"),
		Date:    "11.03.2026",
	}
}

func at(h, m, s int) time.Time {
	return time.Date(2026, 3, 10, h, m, s, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// ComputeRemaining
// ---------------------------------------------------------------------------

func TestComputeRemaining(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Remaining
	}{
		{"before fajr", at(3, 0, 0), Remaining{2, 12, 0, Fajr}},
		{"just after midnight", at(0, 0, 1), Remaining{5, 11, 59, Fajr}},
		{"exactly fajr is passed", at(5, 12, 0), Remaining{1, 33, 0, Sunrise}},
		{"inside fajr minute", at(5, 12, 59), Remaining{1, 32, 1, Sunrise}},
		{"one second before fajr minute", at(5, 11, 59), Remaining{0, 0, 1, Fajr}},
		{"morning", at(9, 15, 20), Remaining{3, 14, 40, Dhuhr}},
		{"afternoon", at(13, 0, 0), Remaining{2, 50, 0, Asr}},
		{"maghrib scenario", at(18, 19, 30), Remaining{0, 0, 30, Maghrib}},
		{"evening", at(18, 20, 0), Remaining{1, 25, 0, Isha}},
		{"exactly isha", at(19, 45, 0), Remaining{9, 25, 0, FajrNextDay}},
		{"last second of day", at(23, 59, 59), Remaining{5, 10, 1, FajrNextDay}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeRemaining(sampleDay(), sampleNextDay(), tt.now)
			if !ok {
				t.Fatal("ComputeRemaining reported absent data")
			}
			if got != tt.want {
				t.Errorf("ComputeRemaining(%s) = %+v, want %+v", tt.now.Format("15:04:05"), got, tt.want)
			}
		})
	}
}

func TestComputeRemaining_AfterIshaAcrossMidnight(t *testing.T) {
	today := sampleDay()
	today.Isha = MustTime("22:00")
	tomorrow := sampleNextDay()
	tomorrow.Fajr = MustTime("05:30")

	got, ok := ComputeRemaining(today, tomorrow, at(23, 59, 59))
	if !ok {
		t.Fatal("expected a result")
	}
	want := Remaining{Hours: 5, Minutes: 30, Seconds: 1, Next: FajrNextDay}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestComputeRemaining_MissingRecords(t *testing.T) {
	if _, ok := ComputeRemaining(nil, sampleNextDay(), at(12, 0, 0)); ok {
		t.Error("expected false without today's record")
	}
	if _, ok := ComputeRemaining(sampleDay(), nil, at(12, 0, 0)); ok {
		t.Error("expected false without tomorrow's record")
	}
	if _, ok := ComputeRemaining(nil, nil, at(12, 0, 0)); ok {
		t.Error("expected false without any record")
	}
}

func TestComputeRemaining_ExhaustedScanFallsBackToFajr(t *testing.T) {
	midnight := TimeOfDay{}
	today := &Record{Fajr: midnight, Sunrise: midnight, Dhuhr: midnight, Asr: midnight, Maghrib: midnight, Isha: midnight}
	// An hour of -24 cancels the next-day shift, so every probe sits at 00:00.
	tomorrow := &Record{Fajr: TimeOfDay{Hour: -24}}

	got, ok := ComputeRemaining(today, tomorrow, at(0, 0, 30))
	if !ok {
		t.Fatal("fallback must still report a result")
	}
	if want := (Remaining{Next: Fajr}); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestComputeRemaining_Idempotent(t *testing.T) {
	now := at(14, 7, 33)
	a, okA := ComputeRemaining(sampleDay(), sampleNextDay(), now)
	b, okB := ComputeRemaining(sampleDay(), sampleNextDay(), now)
	if a != b || okA != okB {
		t.Errorf("two calls differ: %+v/%v vs %+v/%v", a, okA, b, okB)
	}
}

func TestComputeRemaining_UsesLocationOfNow(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	now := time.Date(2026, 3, 10, 18, 19, 30, 0, istanbul)

	got, ok := ComputeRemaining(sampleDay(), sampleNextDay(), now)
	if !ok {
		t.Fatal("expected a result")
	}
	if got.Next != Maghrib || got.Seconds != 30 || got.Minutes != 0 || got.Hours != 0 {
		t.Errorf("got %+v, want Maghrib in 30s", got)
	}
}

func onDay(t TimeOfDay, date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// Every minute of the day, the countdown must land exactly on the target time.
func TestComputeRemaining_MatchesWallClockDifference(t *testing.T) {
	today, tomorrow := sampleDay(), sampleNextDay()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for m := 0; m < 24*60; m++ {
		now := day.Add(time.Duration(m)*time.Minute + 17*time.Second)

		got, ok := ComputeRemaining(today, tomorrow, now)
		if !ok {
			t.Fatalf("no result at %s", now.Format("15:04:05"))
		}

		target := onDay(today.Time(got.Next), day)
		if got.Next == FajrNextDay {
			target = onDay(tomorrow.Fajr, day.AddDate(0, 0, 1))
		}
		if diff := target.Sub(now); diff != got.Duration() {
			t.Fatalf("at %s: countdown %s to %s, wall clock says %s",
				now.Format("15:04:05"), got.Clock(), got.Next, diff)
		}
		if got.Duration() <= 0 {
			t.Fatalf("at %s: non-positive countdown %s", now.Format("15:04:05"), got.Clock())
		}
	}
}

// ---------------------------------------------------------------------------
// ComputeForSchedule
// ---------------------------------------------------------------------------

func TestComputeForSchedule(t *testing.T) {
	s := NewSchedule([]Record{*sampleDay(), *sampleNextDay()})

	got, ok := ComputeForSchedule(s, at(18, 19, 30))
	if !ok {
		t.Fatal("expected a result")
	}
	if got.Remaining.Next != Maghrib || got.Remaining.Seconds != 30 {
		t.Errorf("got %+v", got.Remaining)
	}
	if got.Target != sampleDay().Maghrib {
		t.Errorf("Target = %v, want %v", got.Target, sampleDay().Maghrib)
	}
	if got.TodayKey != "10.03.2026" || got.Today == nil || got.Tomorrow == nil {
		t.Errorf("records not filled in: %+v", got)
	}

	// After Isha the target is tomorrow's Fajr.
	late, ok := ComputeForSchedule(s, at(23, 0, 0))
	if !ok || late.Remaining.Next != FajrNextDay || late.Target != sampleNextDay().Fajr {
		t.Errorf("late = %+v, %v", late, ok)
	}

	missing, ok := ComputeForSchedule(s, at(18, 19, 30).AddDate(0, 0, 1))
	if ok {
		t.Error("expected absent data when tomorrow's record is missing")
	}
	if missing.Today == nil || missing.Tomorrow != nil {
		t.Errorf("missing = %+v, want today's record only", missing)
	}
}

// Keys come from the UTC calendar while the clock is read locally.
func TestComputeForSchedule_UTCKeysLocalClock(t *testing.T) {
	yesterday := *sampleDay()
	yesterday.Date = "09.03.2026"
	yesterday.Fajr = MustTime("05:14")
	s := NewSchedule([]Record{yesterday, *sampleDay()})

	// 01:00 on the 10th in UTC+3 is still the 9th in UTC.
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.FixedZone("TRT", 3*60*60))

	got, ok := ComputeForSchedule(s, now)
	if !ok {
		t.Fatal("expected a result from the UTC-dated records")
	}
	if want := (Remaining{Hours: 4, Minutes: 14, Next: Fajr}); got.Remaining != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Remaining helpers
// ---------------------------------------------------------------------------

func TestRemaining_Helpers(t *testing.T) {
	r := Remaining{Hours: 2, Minutes: 5, Seconds: 9, Next: FajrNextDay}

	if got := r.TotalMinutes(); got != 125 {
		t.Errorf("TotalMinutes() = %d, want 125", got)
	}
	if got := r.Duration(); got != 2*time.Hour+5*time.Minute+9*time.Second {
		t.Errorf("Duration() = %s", got)
	}
	if got := r.Clock(); got != "02:05:09" {
		t.Errorf("Clock() = %q, want %q", got, "02:05:09")
	}
	if got := r.String(); got != "Fajr 02:05:09" {
		t.Errorf("String() = %q, want %q", got, "Fajr 02:05:09")
	}
}
