// Package app wires the long-running pieces together: logger, store, API
// client, notifiers, countdown driver and status server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/vakit/internal/config"
	"github.com/smokyabdulrahman/vakit/internal/countdown"
	"github.com/smokyabdulrahman/vakit/internal/notify"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/smokyabdulrahman/vakit/internal/server"
	"github.com/smokyabdulrahman/vakit/internal/store"
)

// ScheduleFetcher is the part of *api.Client the daemon needs.
type ScheduleFetcher interface {
	FetchMonthlySchedule(ctx context.Context, districtID string) ([]prayer.Record, error)
}

// DaemonConfig holds everything RunDaemon needs. Optional sinks are skipped
// when their settings are empty.
type DaemonConfig struct {
	Backend store.Backend
	Client  ScheduleFetcher

	HTTPAddr string

	MQTTBroker string
	MQTTTopic  string
	// MQTTPublisher overrides dialing MQTTBroker.
	MQTTPublisher notify.Publisher

	TelegramToken  string
	TelegramChatID int64
	// TelegramSender overrides creating a bot from TelegramToken.
	TelegramSender notify.Sender

	// Console receives notifications as colored lines.
	Console  io.Writer
	Observer countdown.Observer

	Clock    func() time.Time
	Interval time.Duration
	Logger   *zap.Logger
}

// Daemon is a wired, not yet running, countdown service.
type Daemon struct {
	Driver   *countdown.Driver
	Server   *server.Server
	HTTPAddr string
	logger   *zap.Logger
}

// NewDaemon loads the preferences and builds the driver and its sinks.
func NewDaemon(ctx context.Context, cfg DaemonConfig) (*Daemon, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Backend == nil {
		return nil, errors.New("daemon requires a store backend")
	}

	prefs, err := cfg.Backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	districtID, err := prefs.DistrictID()
	if err != nil {
		return nil, err
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	driver := countdown.New(countdown.Options{
		Schedule:       prefs.PrayerTimes,
		WarningMinutes: prefs.WarningMinutesOrDefault(),
		Fetch: func(ctx context.Context) ([]prayer.Record, error) {
			if cfg.Client == nil {
				return nil, countdown.ErrNoFetcher
			}
			return cfg.Client.FetchMonthlySchedule(ctx, districtID)
		},
		Persist:  persistTo(cfg.Backend, prefs),
		Notifier: notifier,
		Observer: cfg.Observer,
		Clock:    cfg.Clock,
		Interval: cfg.Interval,
		Logger:   logger.Named("countdown"),
	})

	d := &Daemon{Driver: driver, HTTPAddr: cfg.HTTPAddr, logger: logger}
	if cfg.HTTPAddr != "" {
		d.Server = server.New(driver, logger.Named("http"))
	}

	logger.Info("daemon ready",
		zap.String("location", prefs.Location.String()),
		zap.String("district_id", districtID),
		zap.Int("warning_minutes", prefs.WarningMinutesOrDefault()),
		zap.Int("days_cached", len(prefs.PrayerTimes)))
	return d, nil
}

// Run blocks until ctx is done or a component fails.
func (d *Daemon) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.Driver.Run(ctx)
	})
	if d.Server != nil {
		g.Go(func() error {
			return d.Server.ListenAndServe(ctx, d.HTTPAddr)
		})
	}

	err := g.Wait()
	d.logger.Info("daemon stopped", zap.Error(err))
	return err
}

// persistTo saves a new schedule into the whole preferences document. It
// runs on the driver loop, the only writer of prefs after startup.
func persistTo(backend store.Backend, prefs *config.Config) countdown.PersistFunc {
	return func(ctx context.Context, s prayer.Schedule) error {
		prefs.ReplaceSchedule(s)
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return backend.Save(ctx, prefs)
	}
}

func buildNotifier(cfg DaemonConfig, logger *zap.Logger) (notify.Notifier, error) {
	sinks := notify.Multi{notify.Log{Logger: logger.Named("notify")}}

	if cfg.Console != nil {
		sinks = append(sinks, notify.Console{W: cfg.Console})
	}

	pub := cfg.MQTTPublisher
	if pub == nil && cfg.MQTTBroker != "" {
		client, err := notify.ConnectMQTT(cfg.MQTTBroker, "vakit-"+uuid.NewString()[:8], logger.Named("mqtt"))
		if err != nil {
			return nil, err
		}
		pub = client
	}
	if pub != nil {
		topic := cfg.MQTTTopic
		if topic == "" {
			topic = "vakit/events"
		}
		sinks = append(sinks, notify.NewMQTT(pub, topic))
	}

	sender := cfg.TelegramSender
	if sender == nil && cfg.TelegramToken != "" {
		b, err := notify.NewTelegramBot(cfg.TelegramToken)
		if err != nil {
			return nil, err
		}
		sender = b
	}
	if sender != nil {
		if cfg.TelegramChatID == 0 {
			return nil, errors.New("telegram notifications need a chat id")
		}
		sinks = append(sinks, &notify.Telegram{Bot: sender, ChatID: cfg.TelegramChatID})
	}

	return sinks, nil
}
