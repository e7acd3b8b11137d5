package prayer

import (
	"fmt"
	"strings"
)

// Slot identifies one of the seven points the countdown can target.
type Slot int

const (
	Fajr Slot = iota
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Isha
	// FajrNextDay is tomorrow's Fajr, reached after today's Isha.
	FajrNextDay
)

// DailySlots are the six slots of a single day's record, in chronological order.
var DailySlots = []Slot{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

var slotNames = [...]string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha", "FajrNextDay"}

// shortNames are single-character abbreviations used on status lines.
var shortNames = [...]string{"F", "S", "D", "A", "M", "I", "F"}

// slotAliases maps lowercase English and Turkish names to slots.
var slotAliases = map[string]Slot{
	"fajr":        Fajr,
	"imsak":       Fajr,
	"sunrise":     Sunrise,
	"gunes":       Sunrise,
	"güneş":       Sunrise,
	"dhuhr":       Dhuhr,
	"ogle":        Dhuhr,
	"öğle":        Dhuhr,
	"asr":         Asr,
	"ikindi":      Asr,
	"maghrib":     Maghrib,
	"aksam":       Maghrib,
	"akşam":       Maghrib,
	"isha":        Isha,
	"yatsi":       Isha,
	"yatsı":       Isha,
	"fajrnextday": FajrNextDay,
}

func (s Slot) valid() bool {
	return s >= Fajr && s <= FajrNextDay
}

func (s Slot) String() string {
	if !s.valid() {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// DisplayName returns the user-facing name. FajrNextDay reads as Fajr.
func (s Slot) DisplayName() string {
	if s == FajrNextDay {
		return Fajr.String()
	}
	return s.String()
}

// ShortName returns the single-character abbreviation.
func (s Slot) ShortName() string {
	if !s.valid() {
		return "?"
	}
	return shortNames[s]
}

// ParseSlot resolves a prayer name. Matching is case-insensitive and accepts
// the Turkish names used by the Diyanet schedule.
func ParseSlot(name string) (Slot, error) {
	s, ok := slotAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Fajr, fmt.Errorf("unknown prayer name: %s", name)
	}
	return s, nil
}

// MarshalText encodes the slot by name.
func (s Slot) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid slot %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a slot name produced by MarshalText or ParseSlot.
func (s *Slot) UnmarshalText(b []byte) error {
	v, err := ParseSlot(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CurrentSlot returns the slot in effect while next is being counted down to.
// Before Fajr, and after Isha, the current slot is Isha.
func CurrentSlot(next Slot) Slot {
	switch next {
	case Fajr, FajrNextDay:
		return Isha
	default:
		return next - 1
	}
}
