package api

import (
	"fmt"

	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

// DailyTimes is one day of the /vakitler response. Times are "HH:MM" strings
// in the district's local time.
type DailyTimes struct {
	Imsak  string `json:"Imsak"`
	Gunes  string `json:"Gunes"`
	Ogle   string `json:"Ogle"`
	Ikindi string `json:"Ikindi"`
	Aksam  string `json:"Aksam"`
	Yatsi  string `json:"Yatsi"`

	MiladiTarihKisa string `json:"MiladiTarihKisa"` // "10.03.2026"
	MiladiTarihUzun string `json:"MiladiTarihUzun"` // "10 Mart 2026 Salı"
	HicriTarihKisa  string `json:"HicriTarihKisa"`  // "21.9.1447"
	HicriTarihUzun  string `json:"HicriTarihUzun"`  // "21 Ramazan 1447"
}

// Record converts the wire form into a prayer.Record. A malformed time is an
// error: the whole response is rejected rather than partially used.
func (d DailyTimes) Record() (prayer.Record, error) {
	r := prayer.Record{
		Date:       d.MiladiTarihKisa,
		DateLong:   d.MiladiTarihUzun,
		HijriShort: d.HicriTarihKisa,
		HijriLong:  d.HicriTarihUzun,
	}

	fields := []struct {
		name string
		raw  string
		dst  *prayer.TimeOfDay
	}{
		{"Imsak", d.Imsak, &r.Fajr},
		{"Gunes", d.Gunes, &r.Sunrise},
		{"Ogle", d.Ogle, &r.Dhuhr},
		{"Ikindi", d.Ikindi, &r.Asr},
		{"Aksam", d.Aksam, &r.Maghrib},
		{"Yatsi", d.Yatsi, &r.Isha},
	}
	for _, f := range fields {
		t, err := prayer.ParseTimeOfDay(f.raw)
		if err != nil {
			return prayer.Record{}, fmt.Errorf("failed to parse %s for %s: %w", f.name, d.MiladiTarihKisa, err)
		}
		*f.dst = t
	}

	return r, nil
}

// Country is one entry of the /ulkeler response.
type Country struct {
	UlkeAdi   string `json:"UlkeAdi"`
	UlkeAdiEn string `json:"UlkeAdiEn"`
	UlkeID    string `json:"UlkeID"`
}

// City is one entry of the /sehirler response.
type City struct {
	SehirAdi   string `json:"SehirAdi"`
	SehirAdiEn string `json:"SehirAdiEn"`
	SehirID    string `json:"SehirID"`
}

// District is one entry of the /ilceler response.
type District struct {
	IlceAdi   string `json:"IlceAdi"`
	IlceAdiEn string `json:"IlceAdiEn"`
	IlceID    string `json:"IlceID"`
}
