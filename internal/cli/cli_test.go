package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smokyabdulrahman/vakit/internal/api"
	"github.com/smokyabdulrahman/vakit/internal/config"
	"github.com/smokyabdulrahman/vakit/internal/display"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

// testNow is 13:00 UTC on the first day the fake API serves: Dhuhr has
// passed and Asr (15:50) is next.
var testNow = time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

// fakeAPI serves the ezanvakti endpoints for Türkiye, İstanbul and two of
// its districts.
type fakeAPI struct {
	*httptest.Server
	scheduleCalls atomic.Int32
	listCalls     atomic.Int32
}

func dailyTimes(date, asr string) api.DailyTimes {
	return api.DailyTimes{
		Imsak:           "05:12",
		Gunes:           "06:45",
		Ogle:            "12:30",
		Ikindi:          asr,
		Aksam:           "18:20",
		Yatsi:           "19:45",
		MiladiTarihKisa: date,
		MiladiTarihUzun: date + " uzun",
		HicriTarihUzun:  "21 Ramazan 1447",
	}
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /vakitler/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.scheduleCalls.Add(1)
		switch r.PathValue("id") {
		case "9541", "9558":
			json.NewEncoder(w).Encode([]api.DailyTimes{
				dailyTimes("10.03.2026", "15:50"),
				dailyTimes("11.03.2026", "15:51"),
				dailyTimes("12.03.2026", "15:52"),
			})
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("GET /ulkeler", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		json.NewEncoder(w).Encode([]api.Country{
			{UlkeAdi: "TÜRKİYE", UlkeAdiEn: "TURKEY", UlkeID: "2"},
			{UlkeAdi: "ALMANYA", UlkeAdiEn: "GERMANY", UlkeID: "13"},
		})
	})
	mux.HandleFunc("GET /sehirler/2", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		json.NewEncoder(w).Encode([]api.City{
			{SehirAdi: "İSTANBUL", SehirAdiEn: "ISTANBUL", SehirID: "539"},
			{SehirAdi: "ANKARA", SehirAdiEn: "ANKARA", SehirID: "506"},
		})
	})
	mux.HandleFunc("GET /ilceler/539", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		json.NewEncoder(w).Encode([]api.District{
			{IlceAdi: "İSTANBUL", IlceAdiEn: "ISTANBUL", IlceID: "9541"},
			{IlceAdi: "ÜSKÜDAR", IlceAdiEn: "USKUDAR", IlceID: "9558"},
		})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// setup isolates a test: config and cache under a temp dir, no .env, a
// fixed clock, colors off and the API pointed at a fake.
func setup(t *testing.T) *fakeAPI {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, key := range []string{
		config.EnvName, config.EnvStore, config.EnvHTTPAddr, config.EnvMQTTBroker,
		config.EnvMQTTTopic, config.EnvTelegramToken, config.EnvTelegramChatID, config.EnvCacheDir,
	} {
		t.Setenv(key, "")
	}

	f := newFakeAPI(t)
	t.Setenv(config.EnvAPIURL, f.URL)

	orig := nowFunc
	nowFunc = func() time.Time { return testNow }
	t.Cleanup(func() { nowFunc = orig })

	wasEnabled := display.Enabled()
	display.SetEnabled(false)
	t.Cleanup(func() { display.SetEnabled(wasEnabled) })

	return f
}

// seed writes a document for the ÜSKÜDAR district with the given schedule.
func seed(t *testing.T, districtID string, schedule prayer.Schedule) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Location.City = "İSTANBUL"
	cfg.Location.CityID = "539"
	cfg.Location.District = "ÜSKÜDAR"
	cfg.Location.DistrictID = districtID
	cfg.PrayerTimes = schedule
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
}

func validSchedule() prayer.Schedule {
	var records []prayer.Record
	for _, d := range []api.DailyTimes{dailyTimes("10.03.2026", "15:50"), dailyTimes("11.03.2026", "15:51")} {
		r, err := d.Record()
		if err != nil {
			panic(err)
		}
		records = append(records, r)
	}
	return prayer.NewSchedule(records)
}

// execute runs the CLI in-process and returns what it wrote.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd("v1.2.3-test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func loadSaved(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

// ---------------------------------------------------------------------------
// Root
// ---------------------------------------------------------------------------

func TestVersionFlag(t *testing.T) {
	setup(t)

	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if out != "vakit v1.2.3-test\n" {
		t.Errorf("--version = %q", out)
	}
}

func TestHelpFlag(t *testing.T) {
	setup(t)

	out, _, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("--help failed: %v", err)
	}

	for _, sub := range []string{
		"next", "today", "list", "week", "month", "query", "refresh",
		"countries", "cities", "districts", "select", "locate", "run", "config",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("--help output missing subcommand %q", sub)
		}
	}
}

func TestInvalidTimeFormatFlag(t *testing.T) {
	setup(t)

	_, _, err := execute(t, "next", "--time-format", "13h")
	if err == nil || !strings.Contains(err.Error(), "--time-format") {
		t.Errorf("error = %v, want a --time-format error", err)
	}
}

func TestMissingEnvFile(t *testing.T) {
	setup(t)

	_, _, err := execute(t, "--env-file", "nope.env", "config", "path")
	if err == nil {
		t.Error("expected an error for a missing --env-file")
	}
}

func TestUnknownStore(t *testing.T) {
	setup(t)

	_, _, err := execute(t, "--store", "ftp://example", "config")
	if err == nil || !strings.Contains(err.Error(), "unknown store backend") {
		t.Errorf("error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

func TestConfigSetGet(t *testing.T) {
	setup(t)

	out, _, err := execute(t, "config", "set", "warning_minutes", "10")
	if err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if out != "Set warning_minutes = 10\n" {
		t.Errorf("config set output = %q", out)
	}

	out, _, err = execute(t, "config", "get", "warning_minutes")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if out != "10\n" {
		t.Errorf("config get = %q, want 10", out)
	}

	if got := loadSaved(t).WarningMinutes; got != 10 {
		t.Errorf("saved warning_minutes = %d", got)
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	setup(t)

	tests := [][]string{
		{"config", "set", "warning_minutes", "0"},
		{"config", "set", "time_format", "13h"},
		{"config", "set", "district_id", "abc"},
		{"config", "set", "method", "3"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args[2:], "_"), func(t *testing.T) {
			if _, _, err := execute(t, args...); err == nil {
				t.Errorf("%v: expected an error", args)
			}
		})
	}
}

func TestConfigSet_DistrictDropsSchedule(t *testing.T) {
	setup(t)
	seed(t, "9558", validSchedule())

	if _, _, err := execute(t, "config", "set", "district_id", "9541"); err != nil {
		t.Fatal(err)
	}
	if n := len(loadSaved(t).PrayerTimes); n != 0 {
		t.Errorf("schedule kept %d days after a district change", n)
	}
}

func TestConfigShow(t *testing.T) {
	setup(t)
	seed(t, "9558", validSchedule())

	out, _, err := execute(t, "config")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"district_id", "9558", "2 days", "10.03.2026 to 11.03.2026"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShow_JSON(t *testing.T) {
	setup(t)
	seed(t, "9558", validSchedule())

	out, _, err := execute(t, "config", "--json")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Decode([]byte(out), "stdout")
	if err != nil {
		t.Fatalf("config --json is not a document: %v", err)
	}
	if cfg.Location.DistrictID != "9558" {
		t.Errorf("district_id = %q", cfg.Location.DistrictID)
	}
}

func TestConfigPathAndReset(t *testing.T) {
	setup(t)
	seed(t, "9558", validSchedule())

	out, _, err := execute(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := config.Path()
	if strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, want %q", out, want)
	}

	if _, _, err := execute(t, "config", "reset"); err != nil {
		t.Fatal(err)
	}
	cfg := loadSaved(t)
	if cfg.Location.DistrictID != "" || len(cfg.PrayerTimes) != 0 {
		t.Errorf("reset left %+v", cfg.Location)
	}
}

func TestSQLiteStore(t *testing.T) {
	setup(t)
	spec := "sqlite:" + filepath.Join(t.TempDir(), "vakit.db")

	if _, _, err := execute(t, "--store", spec, "config", "set", "time_format", "12h"); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "--store", spec, "config", "get", "time_format")
	if err != nil {
		t.Fatal(err)
	}
	if out != "12h\n" {
		t.Errorf("time_format = %q", out)
	}

	// The JSON file store was never touched.
	if cfg := loadSaved(t); cfg.TimeFormat != "24h" {
		t.Errorf("file store time_format = %q", cfg.TimeFormat)
	}
}

func TestStoreFromEnv(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "prefs.json")
	t.Setenv(config.EnvStore, "file:"+path)

	out, _, err := execute(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun_NoDistrict(t *testing.T) {
	setup(t)

	_, _, err := execute(t, "run", "--quiet")
	if !errors.Is(err, config.ErrNoDistrict) {
		t.Errorf("run error = %v, want ErrNoDistrict", err)
	}
}
