package store

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/smokyabdulrahman/vakit/internal/config"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// SQLite keeps the document in three tables: scalar preferences as
// key/value rows, the lookup lists, and one row per schedule day.
type SQLite struct {
	db     *sqlx.DB
	logger *zap.Logger
}

var _ Backend = (*SQLite)(nil)

type prayerRow struct {
	DateKey    string `db:"date_key"`
	Fajr       string `db:"fajr"`
	Sunrise    string `db:"sunrise"`
	Dhuhr      string `db:"dhuhr"`
	Asr        string `db:"asr"`
	Maghrib    string `db:"maghrib"`
	Isha       string `db:"isha"`
	DateLong   string `db:"date_long"`
	HijriShort string `db:"hijri_short"`
	HijriLong  string `db:"hijri_long"`
}

type locationRow struct {
	Kind string `db:"kind"`
	Name string `db:"name"`
	ID   string `db:"id"`
}

type preferenceRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite store requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("sqlite store ready", zap.String("path", path))
	return &SQLite{db: db, logger: logger}, nil
}

func migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger.Sugar()})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through zap at debug level.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) { l.s.Debugf(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...any) { l.s.Fatalf(format, v...) }

func (s *SQLite) Load(ctx context.Context) (*config.Config, error) {
	var prefs []preferenceRow
	if err := s.db.SelectContext(ctx, &prefs, `SELECT key, value FROM preferences`); err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	var locs []locationRow
	if err := s.db.SelectContext(ctx, &locs, `SELECT kind, name, id FROM locations`); err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	var days []prayerRow
	if err := s.db.SelectContext(ctx, &days, `SELECT * FROM prayer_times`); err != nil {
		return nil, fmt.Errorf("load prayer times: %w", err)
	}

	cfg := config.Defaults()
	// Set clears derived data when an id changes, so scalars go first and
	// the lists and the schedule are filled in afterwards.
	for _, p := range prefs {
		if p.Value == "" {
			continue
		}
		if err := cfg.Set(p.Key, p.Value); err != nil {
			s.logger.Warn("skipping stored preference", zap.String("key", p.Key), zap.Error(err))
		}
	}

	for _, l := range locs {
		var m *map[string]string
		switch l.Kind {
		case "country":
			m = &cfg.Countries
		case "city":
			m = &cfg.Cities
		case "district":
			m = &cfg.Districts
		default:
			continue
		}
		if *m == nil {
			*m = make(map[string]string)
		}
		(*m)[l.Name] = l.ID
	}

	if len(days) > 0 {
		records := make([]prayer.Record, 0, len(days))
		for _, d := range days {
			r, err := d.record()
			if err != nil {
				return nil, fmt.Errorf("load prayer times for %s: %w", d.DateKey, err)
			}
			records = append(records, r)
		}
		cfg.PrayerTimes = prayer.NewSchedule(records)
	}

	return &cfg, nil
}

// Save replaces every table in one transaction.
func (s *SQLite) Save(ctx context.Context, cfg *config.Config) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	for _, table := range []string{"preferences", "locations", "prayer_times"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, key := range config.ValidKeys {
		v, err := cfg.Get(key)
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO preferences (key, value) VALUES (?, ?)`, key, v); err != nil {
			return fmt.Errorf("save preference %s: %w", key, err)
		}
	}

	lists := []struct {
		kind string
		m    map[string]string
	}{
		{"country", cfg.Countries},
		{"city", cfg.Cities},
		{"district", cfg.Districts},
	}
	for _, l := range lists {
		for name, id := range l.m {
			row := locationRow{Kind: l.kind, Name: name, ID: id}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO locations (kind, name, id) VALUES (:kind, :name, :id)`, row); err != nil {
				return fmt.Errorf("save %s %s: %w", l.kind, name, err)
			}
		}
	}

	for key, r := range cfg.PrayerTimes {
		row := newPrayerRow(key, r)
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO prayer_times
				(date_key, fajr, sunrise, dhuhr, asr, maghrib, isha, date_long, hijri_short, hijri_long)
			VALUES
				(:date_key, :fajr, :sunrise, :dhuhr, :asr, :maghrib, :isha, :date_long, :hijri_short, :hijri_long)`,
			row); err != nil {
			return fmt.Errorf("save prayer times for %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func newPrayerRow(key string, r prayer.Record) prayerRow {
	return prayerRow{
		DateKey:    key,
		Fajr:       r.Fajr.String(),
		Sunrise:    r.Sunrise.String(),
		Dhuhr:      r.Dhuhr.String(),
		Asr:        r.Asr.String(),
		Maghrib:    r.Maghrib.String(),
		Isha:       r.Isha.String(),
		DateLong:   r.DateLong,
		HijriShort: r.HijriShort,
		HijriLong:  r.HijriLong,
	}
}

func (p prayerRow) record() (prayer.Record, error) {
	r := prayer.Record{
		Date:       p.DateKey,
		DateLong:   p.DateLong,
		HijriShort: p.HijriShort,
		HijriLong:  p.HijriLong,
	}
	fields := []struct {
		raw string
		dst *prayer.TimeOfDay
	}{
		{p.Fajr, &r.Fajr},
		{p.Sunrise, &r.Sunrise},
		{p.Dhuhr, &r.Dhuhr},
		{p.Asr, &r.Asr},
		{p.Maghrib, &r.Maghrib},
		{p.Isha, &r.Isha},
	}
	for _, f := range fields {
		t, err := prayer.ParseTimeOfDay(f.raw)
		if err != nil {
			return prayer.Record{}, err
		}
		*f.dst = t
	}
	return r, nil
}
