package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mdminegoub-netizen/suqya-bot/internal/models"
	"github.com/mdminegoub-netizen/suqya-bot/internal/scheduler"
	"github.com/mdminegoub-netizen/suqya-bot/internal/storage"
)

// Sender is the outbound messaging capability the dispatcher drives.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// DeliveryError marks a failed send. The user is skipped for the current
// slot and becomes eligible again at the next one.
type DeliveryError struct {
	UserID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to user %d failed: %v", e.UserID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type Options struct {
	// Interval between ticks; it doubles as the due-slot tolerance window.
	Interval time.Duration
	// SendTimeout bounds each outbound call.
	SendTimeout time.Duration
	// SendsPerSecond rate-limits the outbound channel.
	SendsPerSecond float64
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Dispatcher owns the reminder loop. It is created once at startup and torn
// down by cancelling the context passed to Run; nothing else mutates its
// state. The lastFired map is the only synchronization the at-most-once
// guarantee needs.
type Dispatcher struct {
	store    storage.Store
	sender   Sender
	selector *Selector

	interval    time.Duration
	sendTimeout time.Duration
	limiter     *rate.Limiter
	now         func() time.Time

	mu        sync.Mutex
	lastFired map[int64]scheduler.Slot
}

func New(store storage.Store, sender Sender, opts Options) *Dispatcher {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	if opts.SendsPerSecond <= 0 {
		opts.SendsPerSecond = 25
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Dispatcher{
		store:       store,
		sender:      sender,
		selector:    NewSelector(),
		interval:    opts.Interval,
		sendTimeout: opts.SendTimeout,
		limiter:     rate.NewLimiter(rate.Limit(opts.SendsPerSecond), 1),
		now:         opts.Now,
	}
}

// Run ticks until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("notifier.started", "interval", d.interval.String())

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("notifier.stopped")
			return ctx.Err()
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick evaluates every active user once. Store errors abort only this tick;
// the next tick retries, which gives runtime connection failures their
// backoff.
func (d *Dispatcher) Tick(ctx context.Context) {
	cfg, err := d.store.GetConfig()
	if err != nil {
		slog.Warn("notifier.config_unavailable", "error", err)
		return
	}

	users, err := d.store.ListActiveUsers()
	if err != nil {
		slog.Warn("notifier.users_unavailable", "error", err)
		return
	}

	pool, err := d.contentPool(cfg)
	if err != nil {
		slog.Warn("notifier.tips_unavailable", "error", err)
	}

	for _, user := range users {
		if ctx.Err() != nil {
			return
		}
		d.dispatch(ctx, user, cfg, pool)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, user models.User, cfg models.GlobalConfig, pool []string) {
	slot, due, err := scheduler.DueSlot(user.Timezone, cfg.MotivationHours, d.now(), d.interval)
	if err != nil {
		slog.Warn("notifier.user_skipped", "user", user.ID, "error", err)
		return
	}
	if !due {
		return
	}

	// Reserve the slot before sending: a failed send is not retried within
	// the same slot, and re-entrant ticks cannot double-fire.
	if !d.reserve(user.ID, slot) {
		return
	}

	text, ok := d.selector.Pick(user.ID, pool)
	if !ok {
		slog.Warn("notifier.no_content", "user", user.ID)
		return
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	if err := d.sender.Send(sendCtx, user.ID, text); err != nil {
		slog.Warn("notifier.send_failed", "user", user.ID, "error", err)
		return
	}

	now := d.now().UTC().Format(time.RFC3339)
	if err := d.store.TouchUser(user.ID, now, now); err != nil {
		slog.Warn("notifier.touch_failed", "user", user.ID, "error", err)
	}
	slog.Debug("notifier.sent", "user", user.ID, "slot_date", slot.Date, "slot_hour", slot.Hour)
}

// reserve records the slot for the user and reports whether it was free.
func (d *Dispatcher) reserve(userID int64, slot scheduler.Slot) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastFired == nil {
		d.lastFired = make(map[int64]scheduler.Slot)
	}
	if d.lastFired[userID] == slot {
		return false
	}
	d.lastFired[userID] = slot
	return true
}

func (d *Dispatcher) contentPool(cfg models.GlobalConfig) ([]string, error) {
	pool := append([]string(nil), cfg.MotivationMessages...)

	tips, err := d.store.ListTips()
	if err != nil {
		return pool, err
	}
	for _, tip := range tips {
		pool = append(pool, tip.Text)
	}
	return pool, nil
}
