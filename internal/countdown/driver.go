// Package countdown drives the once-per-second prayer countdown.
//
// A Driver owns the schedule. Run executes a single loop goroutine that
// ticks, answers snapshot queries and applies refresh results. Fetches run
// on their own goroutines and hand their results back over a channel, so the
// schedule is only ever written by the loop. Notifications are queued and
// sent one at a time by a separate sender goroutine, so a slow sink never
// holds up a tick.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smokyabdulrahman/vakit/internal/notify"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

// Status messages surfaced to the user.
const (
	StatusFetching     = "Getting Prayer Times..."
	StatusUpdated      = "Prayer Times Updated."
	StatusFetchFailed  = "Failed to get prayer times!"
	StatusNetworkError = "Network Error."
	StatusSaveFailed   = "Saving the settings failed."
	StatusOutdated     = "Prayer times are outdated."
)

// ErrNoFetcher is reported when a refresh is needed but no fetcher is set.
var ErrNoFetcher = errors.New("no prayer time source configured")

const (
	// DefaultNotifyTimeout bounds a single notification send.
	DefaultNotifyTimeout = 10 * time.Second

	outboxSize = 32
)

// FetchFunc retrieves a fresh month of records.
type FetchFunc func(ctx context.Context) ([]prayer.Record, error)

// PersistFunc stores a schedule that replaced the previous one.
type PersistFunc func(ctx context.Context, s prayer.Schedule) error

// Status is a transient notice, the terminal equivalent of a toast.
type Status struct {
	Message string    `json:"message"`
	Err     error     `json:"-"`
	At      time.Time `json:"at"`
}

// Tick is the outcome of one evaluation.
type Tick struct {
	Now time.Time
	// OK is false when today's or tomorrow's record is missing.
	OK        bool
	Remaining prayer.Remaining
	// Target is the clock time of Remaining.Next.
	Target prayer.TimeOfDay
	// Current is the slot in effect, the one before Remaining.Next.
	Current prayer.Slot
	// SlotChanged is set on the first tick and whenever Remaining.Next moves.
	SlotChanged bool
	// Warning is set on the single tick that crosses the threshold.
	Warning *prayer.Warning
}

// Observer receives every tick and status. Calls come from the loop
// goroutine and must not block.
type Observer interface {
	OnTick(t Tick)
	OnStatus(s Status)
}

// Options configure a Driver. Zero values get defaults.
type Options struct {
	Schedule       prayer.Schedule
	WarningMinutes int
	Fetch          FetchFunc
	Persist        PersistFunc
	Notifier       notify.Notifier
	// NotifyTimeout defaults to DefaultNotifyTimeout.
	NotifyTimeout time.Duration
	Observer      Observer
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Interval defaults to one second.
	Interval time.Duration
	// Location is the zone the clock is read in. Defaults to time.Local.
	Location *time.Location
	Logger   *zap.Logger
}

// Snapshot is a copy of the driver state, safe to use from any goroutine.
type Snapshot struct {
	Now         time.Time        `json:"now"`
	OK          bool             `json:"ok"`
	Remaining   prayer.Remaining `json:"remaining"`
	Target      prayer.TimeOfDay `json:"target"`
	Current     prayer.Slot      `json:"current"`
	Valid       bool             `json:"valid"`
	Refreshing  int              `json:"refreshing"`
	LastStatus  string           `json:"last_status,omitempty"`
	LastRefresh time.Time        `json:"last_refresh"`
	Schedule    prayer.Schedule  `json:"-"`
}

type refreshResult struct {
	seq     uint64
	records []prayer.Record
	err     error
}

// Driver is the stateful tick loop.
type Driver struct {
	opts   Options
	logger *zap.Logger

	// Loop-owned state.
	schedule    prayer.Schedule
	last        Tick
	hasLast     bool
	// warned maps a slot to the date key it was last warned on.
	warned      map[prayer.Slot]string
	status      Status
	inFlight    int
	seq         uint64
	lastRefresh time.Time

	requests chan struct{}
	results  chan refreshResult
	queries  chan chan Snapshot
	outbox   chan notify.Notification
}

// New creates a driver. It does not start the loop.
func New(opts Options) *Driver {
	if !prayer.ValidWarningMinutes(opts.WarningMinutes) {
		opts.WarningMinutes = prayer.DefaultWarningMinutes
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		opts:     opts,
		logger:   logger,
		schedule: opts.Schedule.Clone(),
		warned:   make(map[prayer.Slot]string),
		requests: make(chan struct{}, 8),
		results:  make(chan refreshResult),
		queries:  make(chan chan Snapshot),
		outbox:   make(chan notify.Notification, outboxSize),
	}
}

func (d *Driver) now() time.Time {
	return d.opts.Clock().In(d.opts.Location)
}

// Tick evaluates the countdown at now and fires the warning and slot-change
// side effects. A warning notification is queued for the sender started by
// Run. Run calls Tick every interval; it must not be called concurrently
// with Run.
func (d *Driver) Tick(now time.Time) Tick {
	t := Tick{Now: now}

	c, ok := prayer.ComputeForSchedule(d.schedule, now)
	r := c.Remaining
	if ok {
		t.OK = true
		t.Remaining = r
		t.Target = c.Target
		t.Current = prayer.CurrentSlot(r.Next)
		t.SlotChanged = !d.hasLast || !d.last.OK || d.last.Remaining.Next != r.Next

		if prayer.ShouldWarn(r, d.opts.WarningMinutes) && d.warned[r.Next] != c.TodayKey {
			d.warned[r.Next] = c.TodayKey
			w := prayer.Warning{Slot: r.Next, Minutes: d.opts.WarningMinutes}
			t.Warning = &w
			d.deliver(notify.FromWarning(w, now))
		}
	}

	if t.SlotChanged {
		d.logger.Debug("next prayer changed",
			zap.Stringer("next", r.Next),
			zap.String("remaining", r.Clock()))
	}

	d.last = t
	d.hasLast = true
	if d.opts.Observer != nil {
		d.opts.Observer.OnTick(t)
	}
	return t
}

// Refresh asks the loop to fetch a new schedule. It never blocks and reports
// false when too many requests are already queued.
func (d *Driver) Refresh() bool {
	select {
	case d.requests <- struct{}{}:
		return true
	default:
		return false
	}
}

// Snapshot asks the loop for a copy of its state.
func (d *Driver) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case d.queries <- reply:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Run starts the loop and blocks until ctx is done. A stale schedule is
// refreshed once at startup.
func (d *Driver) Run(ctx context.Context) error {
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		d.send(ctx)
	}()
	defer func() { <-sent }()

	now := d.now()
	if !prayer.IsScheduleValid(d.schedule, now) {
		d.setStatus(StatusOutdated, nil, now)
		d.startRefresh(ctx, now)
	}
	d.Tick(now)

	ticker := time.NewTicker(d.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Tick(d.now())
		case <-d.requests:
			d.startRefresh(ctx, d.now())
		case res := <-d.results:
			d.apply(ctx, res)
		case reply := <-d.queries:
			reply <- d.snapshot()
		}
	}
}

func (d *Driver) startRefresh(ctx context.Context, now time.Time) {
	d.seq++
	seq := d.seq
	d.inFlight++
	d.setStatus(StatusFetching, nil, now)

	fetch := d.opts.Fetch
	go func() {
		var res refreshResult
		res.seq = seq
		if fetch == nil {
			res.err = ErrNoFetcher
		} else {
			res.records, res.err = fetch(ctx)
		}
		select {
		case d.results <- res:
		case <-ctx.Done():
		}
	}()
}

// apply installs a fetch result. Results are applied in arrival order, so
// when two fetches overlap the later arrival wins.
func (d *Driver) apply(ctx context.Context, res refreshResult) {
	d.inFlight--
	now := d.now()

	if res.err == nil && len(res.records) == 0 {
		res.err = errors.New("no prayer times returned")
	}
	if res.err != nil {
		d.logger.Warn("failed to fetch prayer times", zap.Uint64("seq", res.seq), zap.Error(res.err))
		d.setStatus(StatusFetchFailed, res.err, now)
		d.deliver(notify.New(notify.KindFailure, StatusFetchFailed, res.err.Error(), now))
		return
	}

	d.schedule = prayer.NewSchedule(res.records)
	d.lastRefresh = now
	d.logger.Info("prayer times updated", zap.Uint64("seq", res.seq), zap.Int("days", len(d.schedule)))

	if d.opts.Persist != nil {
		if err := d.opts.Persist(ctx, d.schedule.Clone()); err != nil {
			d.logger.Error("failed to save prayer times", zap.Error(err))
			d.setStatus(StatusSaveFailed, err, now)
			d.deliver(notify.New(notify.KindFailure, StatusSaveFailed, err.Error(), now))
			d.Tick(now)
			return
		}
	}

	if prayer.IsScheduleValid(d.schedule, now) {
		d.setStatus(StatusUpdated, nil, now)
	} else {
		d.setStatus(StatusOutdated, fmt.Errorf("fetched schedule does not cover %s", prayer.DateKey(now.UTC())), now)
	}
	d.Tick(now)
}

func (d *Driver) setStatus(msg string, err error, now time.Time) {
	d.status = Status{Message: msg, Err: err, At: now}
	if d.opts.Observer != nil {
		d.opts.Observer.OnStatus(d.status)
	}
}

// deliver queues n for the sender. It never blocks; when the queue is full
// the notification is dropped and logged.
func (d *Driver) deliver(n notify.Notification) {
	select {
	case d.outbox <- n:
	default:
		d.logger.Warn("notification queue full, dropping",
			zap.String("id", n.ID), zap.String("kind", string(n.Kind)))
	}
}

// send drains the outbox one notification at a time until ctx is done.
func (d *Driver) send(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.outbox:
			nctx, cancel := context.WithTimeout(ctx, d.opts.NotifyTimeout)
			if err := d.opts.Notifier.Notify(nctx, n); err != nil {
				d.logger.Warn("notification failed", zap.String("id", n.ID), zap.Error(err))
			}
			cancel()
		}
	}
}

func (d *Driver) snapshot() Snapshot {
	return Snapshot{
		Now:         d.last.Now,
		OK:          d.last.OK,
		Remaining:   d.last.Remaining,
		Target:      d.last.Target,
		Current:     d.last.Current,
		Valid:       prayer.IsScheduleValid(d.schedule, d.now()),
		Refreshing:  d.inFlight,
		LastStatus:  d.status.Message,
		LastRefresh: d.lastRefresh,
		Schedule:    d.schedule.Clone(),
	}
}
