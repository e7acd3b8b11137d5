// Package config provides the persistent preferences document for vakit.
//
// The document is stored as JSON at ~/.config/vakit/preferences.json
// (XDG-compliant). It holds the selected location, the warning threshold,
// the location lookup lists and the schedule store keyed by DD.MM.YYYY.
// The merge priority is: CLI flags > environment > document > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

const (
	configDirName  = "vakit"
	configFileName = "preferences.json"
)

// Default location: Türkiye, as listed by the Diyanet API.
const (
	DefaultCountry   = "TÜRKİYE"
	DefaultCountryID = "2"
)

// ErrNoDistrict is returned when an operation needs a district that has not been selected.
var ErrNoDistrict = errors.New("no district selected; run `vakit select` or `vakit config set district_id <id>`")

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"country", "country_id",
	"city", "city_id",
	"district", "district_id",
	"warning_minutes",
	"time_format",
	"cache_dir",
}

// Location is the selected country/city/district and their API ids.
type Location struct {
	Country    string `json:"country,omitempty"`
	CountryID  string `json:"country_id,omitempty"`
	City       string `json:"city,omitempty"`
	CityID     string `json:"city_id,omitempty"`
	District   string `json:"district,omitempty"`
	DistrictID string `json:"district_id,omitempty"`
}

// String renders the location as "District, City, Country", skipping blanks.
func (l Location) String() string {
	var parts []string
	for _, p := range []string{l.District, l.City, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Config is the whole preferences document. Zero values mean "not set".
type Config struct {
	Location       Location `json:"location"`
	WarningMinutes int      `json:"warning_minutes,omitempty"`
	TimeFormat     string   `json:"time_format,omitempty"` // "12h" or "24h"
	CacheDir       string   `json:"cache_dir,omitempty"`

	// Lookup lists, name -> id, for the selected country and city.
	Countries map[string]string `json:"countries,omitempty"`
	Cities    map[string]string `json:"cities,omitempty"`
	Districts map[string]string `json:"districts,omitempty"`

	PrayerTimes prayer.Schedule `json:"prayer_times,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Location: Location{
			Country:   DefaultCountry,
			CountryID: DefaultCountryID,
		},
		WarningMinutes: prayer.DefaultWarningMinutes,
		TimeFormat:     "24h",
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the preferences file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the preferences file from disk.
// If the file does not exist, it returns Defaults() (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the preferences from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Defaults()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Decode(data, path)
}

// Decode parses a document. name is used in error messages only.
func Decode(data []byte, name string) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", name, err)
	}
	return &cfg, nil
}

// Encode renders the document as indented JSON with a trailing newline.
func (c *Config) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the preferences to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the preferences to a specific file path. The file is
// replaced atomically: readers see either the old or the new document.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := c.Encode()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".preferences-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	return nil
}

// Reset deletes the preferences file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the preferences file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
//
// Changing an id invalidates what was derived from it: a new country drops
// the city list, a new city drops the district list, and a new district
// drops the stored schedule so the next run refreshes it.
func (c *Config) Set(key, value string) error {
	switch key {
	case "country":
		c.Location.Country = value
	case "country_id":
		if err := validateID(key, value); err != nil {
			return err
		}
		if value != c.Location.CountryID {
			c.Cities = nil
		}
		c.Location.CountryID = value
	case "city":
		c.Location.City = value
	case "city_id":
		if err := validateID(key, value); err != nil {
			return err
		}
		if value != c.Location.CityID {
			c.Districts = nil
		}
		c.Location.CityID = value
	case "district":
		c.Location.District = value
	case "district_id":
		if err := validateID(key, value); err != nil {
			return err
		}
		if value != c.Location.DistrictID {
			c.PrayerTimes = nil
		}
		c.Location.DistrictID = value
	case "warning_minutes":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid warning_minutes %q: must be an integer", value)
		}
		if !prayer.ValidWarningMinutes(v) {
			return fmt.Errorf("invalid warning_minutes %q: must be between %d and %d",
				value, prayer.MinWarningMinutes, prayer.MaxWarningMinutes)
		}
		c.WarningMinutes = v
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "cache_dir":
		c.CacheDir = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "country":
		return c.Location.Country, nil
	case "country_id":
		return c.Location.CountryID, nil
	case "city":
		return c.Location.City, nil
	case "city_id":
		return c.Location.CityID, nil
	case "district":
		return c.Location.District, nil
	case "district_id":
		return c.Location.DistrictID, nil
	case "warning_minutes":
		if c.WarningMinutes == 0 {
			return "", nil
		}
		return strconv.Itoa(c.WarningMinutes), nil
	case "time_format":
		return c.TimeFormat, nil
	case "cache_dir":
		return c.CacheDir, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// validateID checks that an API id is a non-empty run of digits.
func validateID(key, value string) error {
	if value == "" {
		return fmt.Errorf("invalid %s: must not be empty", key)
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return fmt.Errorf("invalid %s %q: must be numeric", key, value)
	}
	return nil
}

// WarningMinutesOrDefault returns the threshold, falling back to the default
// when unset or out of range.
func (c *Config) WarningMinutesOrDefault() int {
	if prayer.ValidWarningMinutes(c.WarningMinutes) {
		return c.WarningMinutes
	}
	return prayer.DefaultWarningMinutes
}

// TimeFormatOrDefault returns the time format, falling back to "24h".
func (c *Config) TimeFormatOrDefault() string {
	if c.TimeFormat == "" {
		return "24h"
	}
	return c.TimeFormat
}

// DistrictID returns the selected district id or ErrNoDistrict.
func (c *Config) DistrictID() (string, error) {
	if c.Location.DistrictID == "" {
		return "", ErrNoDistrict
	}
	return c.Location.DistrictID, nil
}

// ReplaceSchedule swaps the whole schedule store. The previous entries are
// dropped, not merged.
func (c *Config) ReplaceSchedule(s prayer.Schedule) {
	c.PrayerTimes = s
}
