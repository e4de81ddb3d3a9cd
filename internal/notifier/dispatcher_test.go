package notifier

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mdminegoub-netizen/suqya-bot/internal/models"
	"github.com/mdminegoub-netizen/suqya-bot/internal/storage"
)

type fakeSender struct {
	mu   sync.Mutex
	sent map[int64][]string
	fail map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		sent: make(map[int64][]string),
		fail: make(map[int64]bool),
	}
}

func (f *fakeSender) Send(ctx context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail[userID] {
		return &DeliveryError{UserID: userID, Err: errors.New("boom")}
	}
	f.sent[userID] = append(f.sent[userID], text)
	return nil
}

func (f *fakeSender) count(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent[userID])
}

func setupStore(t *testing.T, cfg models.GlobalConfig) *storage.JSONStore {
	t.Helper()

	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "suqya.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.SaveConfig(cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	return store
}

func fixedClock(t *testing.T, value string) func() time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse time %s: %v", value, err)
	}
	return func() time.Time { return ts }
}

func TestTick_SendsOncePerSlot(t *testing.T) {
	store := setupStore(t, models.GlobalConfig{
		MotivationHours:    []int{9},
		MotivationMessages: []string{"drink water"},
	})
	if err := store.RegisterUser(42, "UTC"); err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	sender := newFakeSender()
	d := New(store, sender, Options{
		Interval: time.Minute,
		Now:      fixedClock(t, "2025-06-01T09:00:30Z"),
	})

	// Two ticks land in the same slot; only the first may send.
	d.Tick(context.Background())
	d.Tick(context.Background())

	if got := sender.count(42); got != 1 {
		t.Errorf("expected 1 send, got %d", got)
	}

	user, err := store.GetUser(42)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if user.LastNotified == "" {
		t.Error("expected last_notified to be set after a successful send")
	}
}

func TestTick_FailedSendDoesNotBlockOthers(t *testing.T) {
	store := setupStore(t, models.GlobalConfig{
		MotivationHours:    []int{9},
		MotivationMessages: []string{"drink water"},
	})
	for _, id := range []int64{1, 2} {
		if err := store.RegisterUser(id, "UTC"); err != nil {
			t.Fatalf("failed to register user %d: %v", id, err)
		}
	}

	sender := newFakeSender()
	sender.fail[1] = true

	d := New(store, sender, Options{
		Interval: time.Minute,
		Now:      fixedClock(t, "2025-06-01T09:00:30Z"),
	})
	d.Tick(context.Background())

	if got := sender.count(2); got != 1 {
		t.Errorf("expected user 2 to receive 1 message, got %d", got)
	}

	// The failed user's slot is consumed; a retry within the same slot would
	// risk double delivery after a timeout whose send actually landed.
	sender.mu.Lock()
	sender.fail[1] = false
	sender.mu.Unlock()
	d.Tick(context.Background())

	if got := sender.count(1); got != 0 {
		t.Errorf("expected no retry for user 1 within the slot, got %d sends", got)
	}
}

func TestTick_InactiveUserSkipped(t *testing.T) {
	store := setupStore(t, models.GlobalConfig{
		MotivationHours:    []int{9},
		MotivationMessages: []string{"drink water"},
	})
	if err := store.RegisterUser(7, "UTC"); err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	if err := store.SetUserActive(7, false); err != nil {
		t.Fatalf("failed to deactivate user: %v", err)
	}

	sender := newFakeSender()
	d := New(store, sender, Options{
		Interval: time.Minute,
		Now:      fixedClock(t, "2025-06-01T09:00:30Z"),
	})
	d.Tick(context.Background())

	if got := sender.count(7); got != 0 {
		t.Errorf("expected no sends to an inactive user, got %d", got)
	}
}

func TestTick_InvalidTimezoneSkipsOnlyThatUser(t *testing.T) {
	store := setupStore(t, models.GlobalConfig{
		MotivationHours:    []int{9},
		MotivationMessages: []string{"drink water"},
	})
	if err := store.RegisterUser(1, "Mars/Olympus"); err != nil {
		t.Fatalf("failed to register user 1: %v", err)
	}
	if err := store.RegisterUser(2, "UTC"); err != nil {
		t.Fatalf("failed to register user 2: %v", err)
	}

	sender := newFakeSender()
	d := New(store, sender, Options{
		Interval: time.Minute,
		Now:      fixedClock(t, "2025-06-01T09:00:30Z"),
	})
	d.Tick(context.Background())

	if got := sender.count(1); got != 0 {
		t.Errorf("expected no sends to the user with a broken timezone, got %d", got)
	}
	if got := sender.count(2); got != 1 {
		t.Errorf("expected user 2 to receive 1 message, got %d", got)
	}
}

func TestTick_EmptyPoolSendsNothing(t *testing.T) {
	store := setupStore(t, models.GlobalConfig{
		MotivationHours:    []int{9},
		MotivationMessages: []string{},
	})
	if err := store.RegisterUser(42, "UTC"); err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	sender := newFakeSender()
	d := New(store, sender, Options{
		Interval: time.Minute,
		Now:      fixedClock(t, "2025-06-01T09:00:30Z"),
	})
	d.Tick(context.Background())

	if got := sender.count(42); got != 0 {
		t.Errorf("expected no sends with an empty content pool, got %d", got)
	}
}

func TestTick_TipsJoinTheContentPool(t *testing.T) {
	store := setupStore(t, models.GlobalConfig{
		MotivationHours:    []int{9},
		MotivationMessages: []string{},
	})
	if err := store.RegisterUser(42, "UTC"); err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	if _, err := store.AddTip(models.Tip{Text: "water before coffee"}); err != nil {
		t.Fatalf("failed to add tip: %v", err)
	}

	sender := newFakeSender()
	d := New(store, sender, Options{
		Interval: time.Minute,
		Now:      fixedClock(t, "2025-06-01T09:00:30Z"),
	})
	d.Tick(context.Background())

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent[42]) != 1 || sender.sent[42][0] != "water before coffee" {
		t.Errorf("expected the tip to be sent, got %v", sender.sent[42])
	}
}

func TestTick_OffHourSendsNothing(t *testing.T) {
	store := setupStore(t, models.GlobalConfig{
		MotivationHours:    []int{9},
		MotivationMessages: []string{"drink water"},
	})
	if err := store.RegisterUser(42, "UTC"); err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	sender := newFakeSender()
	d := New(store, sender, Options{
		Interval: time.Minute,
		Now:      fixedClock(t, "2025-06-01T10:30:00Z"),
	})
	d.Tick(context.Background())

	if got := sender.count(42); got != 0 {
		t.Errorf("expected no sends off the hour marks, got %d", got)
	}
}
