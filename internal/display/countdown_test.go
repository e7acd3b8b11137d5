package display

import (
	"strings"
	"testing"

	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

func sampleRecord() prayer.Record {
	return prayer.Record{
		Date:      "10.03.2026",
		Fajr:      prayer.MustTime("05:12"),
		Sunrise:   prayer.MustTime("06:45"),
		Dhuhr:     prayer.MustTime("12:30"),
		Asr:       prayer.MustTime("15:50"),
		Maghrib:   prayer.MustTime("18:20"),
		Isha:      prayer.MustTime("19:45"),
		HijriLong: "21 Ramazan 1447",
	}
}

func TestCountdownLine(t *testing.T) {
	SetEnabled(false)

	r := prayer.Remaining{Seconds: 30, Next: prayer.Maghrib}
	if got, want := CountdownLine(r, prayer.MustTime("18:20"), true, "15:04"), "Maghrib 18:20 in 00:00:30"; got != want {
		t.Errorf("CountdownLine() = %q, want %q", got, want)
	}
	if got := CountdownLine(prayer.Remaining{}, prayer.TimeOfDay{}, false, "15:04"); got != "Next prayer --:--" {
		t.Errorf("CountdownLine(!ok) = %q", got)
	}

	r = prayer.Remaining{Hours: 9, Minutes: 25, Next: prayer.FajrNextDay}
	if got := CountdownLine(r, prayer.MustTime("05:10"), true, "3:04 PM"); got != "Fajr 5:10 AM in 09:25:00" {
		t.Errorf("CountdownLine(12h) = %q", got)
	}
}

func TestDayCard(t *testing.T) {
	SetEnabled(false)

	got := DayCard(sampleRecord(), prayer.Asr, prayer.Maghrib, true, "15:04")
	for _, want := range []string{
		"10.03.2026  21 Ramazan 1447",
		"Fajr      05:12",
		"Maghrib   18:20  ◀ next",
		"Isha      19:45",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("DayCard() missing %q in:\n%s", want, got)
		}
	}

	if plain := DayCard(sampleRecord(), prayer.Asr, prayer.Maghrib, false, "15:04"); strings.Contains(plain, "next") {
		t.Error("DayCard without marks should not point at the next prayer")
	}
}

func TestDayCard_Colors(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	got := DayCard(sampleRecord(), prayer.Asr, prayer.Maghrib, true, "15:04")
	if !strings.Contains(got, green+"Asr       15:50"+reset) {
		t.Errorf("current slot should be green:\n%q", got)
	}
	if !strings.Contains(got, dim+"Fajr      05:12"+reset) {
		t.Errorf("passed slots should be dim:\n%q", got)
	}

	// Before Fajr nothing has passed and Isha is only current by wrap-around.
	got = DayCard(sampleRecord(), prayer.Isha, prayer.Fajr, true, "15:04")
	if strings.Contains(got, green) || strings.Contains(got, dim+"Isha") {
		t.Errorf("before Fajr no slot should be marked passed:\n%q", got)
	}
}

func TestScheduleTable(t *testing.T) {
	SetEnabled(false)

	next := sampleRecord()
	next.Date = "11.03.2026"
	tbl := ScheduleTable([]prayer.Record{sampleRecord(), next}, "11.03.2026", "15:04")

	if tbl.Len() != 2 || tbl.highlight != 1 {
		t.Errorf("Len/highlight = %d/%d, want 2/1", tbl.Len(), tbl.highlight)
	}
	got := tbl.Render()
	if !strings.Contains(got, "Tue 10 Mar  05:12") {
		t.Errorf("Render() missing first row:\n%s", got)
	}
	if !strings.Contains(got, "Sunrise") {
		t.Errorf("Render() missing headers:\n%s", got)
	}
}
