package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mdminegoub-netizen/suqya-bot/internal/models"
)

// testStores runs the given test against both backends; the interface
// contract is the same either way.
func testStores(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		store := NewSQLiteStore(filepath.Join(t.TempDir(), "suqya.db"))
		if err := store.Init(); err != nil {
			t.Fatalf("failed to init sqlite store: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		fn(t, store)
	})

	t.Run("json", func(t *testing.T) {
		store := NewJSONStore(filepath.Join(t.TempDir(), "suqya.json"))
		if err := store.Init(); err != nil {
			t.Fatalf("failed to init json store: %v", err)
		}
		fn(t, store)
	})
}

func TestInit_SeedsDefaultConfig(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		cfg, err := store.GetConfig()
		if err != nil {
			t.Fatalf("GetConfig failed: %v", err)
		}
		if !reflect.DeepEqual(cfg.MotivationHours, models.DefaultMotivationHours) {
			t.Errorf("expected default hours %v, got %v", models.DefaultMotivationHours, cfg.MotivationHours)
		}
	})
}

func TestRegisterAndGetUser(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		if err := store.RegisterUser(42, "Europe/Paris"); err != nil {
			t.Fatalf("RegisterUser failed: %v", err)
		}

		u, err := store.GetUser(42)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if u.ID != 42 || u.Timezone != "Europe/Paris" || !u.Active {
			t.Errorf("unexpected user %+v", u)
		}
		if u.CreatedAt == "" {
			t.Error("expected created_at to be set on registration")
		}

		// Re-registering updates the timezone without resetting the record.
		if err := store.RegisterUser(42, "UTC"); err != nil {
			t.Fatalf("second RegisterUser failed: %v", err)
		}
		u2, err := store.GetUser(42)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if u2.Timezone != "UTC" || u2.CreatedAt != u.CreatedAt {
			t.Errorf("expected timezone update to preserve the record, got %+v", u2)
		}
	})
}

func TestListActiveUsers_FiltersInactive(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		if err := store.RegisterUser(1, "UTC"); err != nil {
			t.Fatalf("RegisterUser failed: %v", err)
		}
		if err := store.RegisterUser(2, "UTC"); err != nil {
			t.Fatalf("RegisterUser failed: %v", err)
		}
		if err := store.SetUserActive(2, false); err != nil {
			t.Fatalf("SetUserActive failed: %v", err)
		}

		users, err := store.ListActiveUsers()
		if err != nil {
			t.Fatalf("ListActiveUsers failed: %v", err)
		}
		if len(users) != 1 || users[0].ID != 1 {
			t.Errorf("expected only user 1 to be active, got %+v", users)
		}
	})
}

func TestTouchUser(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		if err := store.RegisterUser(7, "UTC"); err != nil {
			t.Fatalf("RegisterUser failed: %v", err)
		}

		stamp := "2025-06-01T09:00:00Z"
		if err := store.TouchUser(7, stamp, stamp); err != nil {
			t.Fatalf("TouchUser failed: %v", err)
		}

		u, err := store.GetUser(7)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if u.LastActive != stamp || u.LastNotified != stamp {
			t.Errorf("expected timestamps %s, got %+v", stamp, u)
		}

		// An empty field leaves the stored value alone.
		if err := store.TouchUser(7, "2025-06-02T00:00:00Z", ""); err != nil {
			t.Fatalf("TouchUser failed: %v", err)
		}
		u, err = store.GetUser(7)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if u.LastNotified != stamp {
			t.Errorf("expected last_notified unchanged, got %q", u.LastNotified)
		}
	})
}

func TestNotesRoundTrip(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		id, err := store.AddNote(models.Note{UserID: 42, Text: "remember the water"})
		if err != nil {
			t.Fatalf("AddNote failed: %v", err)
		}
		if id == "" {
			t.Fatal("expected a generated note id")
		}

		if _, err := store.AddNote(models.Note{UserID: 99, Text: "other user"}); err != nil {
			t.Fatalf("AddNote failed: %v", err)
		}

		notes, err := store.NotesForUser(42)
		if err != nil {
			t.Fatalf("NotesForUser failed: %v", err)
		}
		if len(notes) != 1 || notes[0].Text != "remember the water" || notes[0].ID != id {
			t.Errorf("unexpected notes %+v", notes)
		}
	})
}

func TestAddNote_RejectsBlankText(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		_, err := store.AddNote(models.Note{UserID: 42, Text: "   "})

		var vErr *models.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError for blank note, got %v", err)
		}
	})
}

func TestLettersRoundTrip(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		id, err := store.AddLetter(models.Letter{UserID: 42, Content: "dear me", DeliverAt: "someday"})
		if err != nil {
			t.Fatalf("AddLetter failed: %v", err)
		}

		letters, err := store.LettersForUser(42)
		if err != nil {
			t.Fatalf("LettersForUser failed: %v", err)
		}
		if len(letters) != 1 || letters[0].ID != id || letters[0].DeliverAt != "someday" {
			t.Errorf("unexpected letters %+v", letters)
		}
	})
}

func TestAddLetter_RejectsEmptyContent(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		_, err := store.AddLetter(models.Letter{UserID: 42})

		var vErr *models.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError for empty letter, got %v", err)
		}
	})
}

func TestTipsRoundTrip(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		if _, err := store.AddTip(models.Tip{Text: "sip, don't gulp"}); err != nil {
			t.Fatalf("AddTip failed: %v", err)
		}

		tips, err := store.ListTips()
		if err != nil {
			t.Fatalf("ListTips failed: %v", err)
		}
		if len(tips) != 1 || tips[0].Text != "sip, don't gulp" {
			t.Errorf("unexpected tips %+v", tips)
		}
	})
}

func TestGet_MissingDocument(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		_, err := store.Get(CollectionUsers, "12345")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		_, err = store.GetUser(12345)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestGet_UnknownCollection(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		if _, err := store.Get("bogus", "1"); err == nil {
			t.Error("expected an error for an unknown collection")
		}
		if err := store.Set("bogus", "1", Document{}); err == nil {
			t.Error("expected an error for an unknown collection")
		}
	})
}

func TestSaveConfig_RejectsBadHours(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		err := store.SaveConfig(models.GlobalConfig{MotivationHours: []int{25}})

		var vErr *models.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError for out-of-range hour, got %v", err)
		}
	})
}

func TestJSONStore_LoadAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suqya.json")

	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.RegisterUser(42, "UTC"); err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	reopened := NewJSONStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := reopened.GetUser(42); err != nil {
		t.Errorf("expected user to survive a reopen: %v", err)
	}
}

func TestJSONStore_InitTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suqya.json")

	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := NewJSONStore(path).Init(); err == nil {
		t.Error("expected second Init to fail")
	}
}

func TestSQLiteStore_LoadBeforeInitFails(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("expected Load to fail before Init")
	}
}
