// Package snapshot imports the legacy denormalized data dump into the
// normalized collections. It runs once: re-running it appends duplicate
// notes and letters because no existence check precedes the appends. That
// matches the system this one replaces and is asserted in tests rather than
// fixed; see DESIGN.md.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/mdminegoub-netizen/suqya-bot/internal/models"
	"github.com/mdminegoub-netizen/suqya-bot/internal/storage"
)

// GlobalKey is the reserved snapshot key holding benefits and schedule
// configuration; every other top-level key is a user id.
const GlobalKey = "GLOBAL_KEY"

// Result summarizes one import run. A zero Result with a non-nil error means
// nothing was done.
type Result struct {
	Users          int
	Notes          int
	Letters        int
	Tips           int
	ConfigMigrated bool
}

type Importer struct {
	store   storage.Store
	workers int
}

// NewImporter returns an importer that writes user records with at most
// workers concurrent store calls.
func NewImporter(store storage.Store, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{
		store:   store,
		workers: workers,
	}
}

// Run reads the snapshot file and migrates it. Only an unreadable snapshot
// or an unreachable store is fatal; per-record failures are logged and the
// run continues.
func (im *Importer) Run(snapshotPath string) (Result, error) {
	raw, err := os.ReadFile(snapshotPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read legacy snapshot: %w", err)
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return Result{}, fmt.Errorf("failed to parse legacy snapshot: %w", err)
	}

	if err := im.store.Load(); err != nil {
		return Result{}, fmt.Errorf("cannot open store: %w", err)
	}

	var users, notes, letters atomic.Int64

	p := pool.New().WithMaxGoroutines(im.workers)
	for key, rec := range records {
		if key == GlobalKey {
			continue
		}
		// Pre-Go-1.22 toolchains share loop variables across iterations;
		// shadow them so each goroutine sees its own record.
		key, rec := key, rec
		p.Go(func() {
			n, l, err := im.importUser(key, rec)
			notes.Add(int64(n))
			letters.Add(int64(l))
			if err != nil {
				slog.Warn("snapshot.user_failed", "user", key, "error", err)
				return
			}
			done := users.Add(1)
			if done%10 == 0 {
				slog.Info("snapshot.progress", "users", done)
			}
		})
	}
	p.Wait()

	tips, configMigrated := im.importGlobal(records[GlobalKey])

	res := Result{
		Users:          int(users.Load()),
		Notes:          int(notes.Load()),
		Letters:        int(letters.Load()),
		Tips:           tips,
		ConfigMigrated: configMigrated,
	}
	slog.Info("snapshot.done",
		"users", res.Users,
		"notes", res.Notes,
		"letters", res.Letters,
		"tips", res.Tips,
		"config_migrated", res.ConfigMigrated,
	)
	return res, nil
}

// importUser normalizes one legacy record: embedded memo and letter lists
// are split into their own collections and stripped from the user document
// before it is written. Counters reflect appended documents even when a
// later step fails; there is no cross-collection transaction.
func (im *Importer) importUser(key string, raw json.RawMessage) (notes, letters int, err error) {
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil || record == nil {
		return 0, 0, &models.ValidationError{Entity: "user", Field: key, Reason: "record is not a mapping"}
	}

	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, 0, &models.ValidationError{Entity: "user", Field: key, Reason: "key is not a numeric id"}
	}
	record["id"] = id
	if _, ok := record["active"]; !ok {
		record["active"] = true
	}

	createdAt, _ := record["created_at"].(string)
	lastActive, _ := record["last_active"].(string)

	// The embedded list is stripped even when empty or unwritable.
	if rawMemos, ok := record["heart_memos"]; ok {
		delete(record, "heart_memos")
		if memos, ok := rawMemos.([]any); ok {
			for _, entry := range memos {
				text, _ := entry.(string)
				text = strings.TrimSpace(text)
				if text == "" {
					continue
				}
				note := models.Note{
					UserID:    id,
					Text:      text,
					CreatedAt: createdAt,
					UpdatedAt: lastActive,
				}
				if _, err := im.store.AddNote(note); err != nil {
					return notes, letters, fmt.Errorf("append note: %w", err)
				}
				notes++
			}
		}
	}

	if rawLetters, ok := record["letters_to_self"]; ok {
		delete(record, "letters_to_self")
		if list, ok := rawLetters.([]any); ok {
			for _, entry := range list {
				m, ok := entry.(map[string]any)
				if !ok {
					continue
				}
				content, _ := m["content"].(string)
				if content == "" {
					continue
				}
				letter := models.Letter{
					UserID:  id,
					Content: content,
				}
				if v, ok := m["deliver_at"].(string); ok {
					letter.DeliverAt = v
				}
				if v, ok := m["created_at"].(string); ok {
					letter.CreatedAt = v
				}
				if _, err := im.store.AddLetter(letter); err != nil {
					return notes, letters, fmt.Errorf("append letter: %w", err)
				}
				letters++
			}
		}
	}

	foldUnknownFields(record)

	if err := im.store.Set(storage.CollectionUsers, key, storage.Document(record)); err != nil {
		return notes, letters, fmt.Errorf("write user: %w", err)
	}
	return notes, letters, nil
}

// userFields are the keys the typed User struct round-trips. Anything else in
// a legacy record would be dropped on the first typed read-modify-write, so
// the importer folds it under profile, which the struct does carry.
var userFields = map[string]bool{
	"id":            true,
	"timezone":      true,
	"active":        true,
	"created_at":    true,
	"last_active":   true,
	"last_notified": true,
	"profile":       true,
}

func foldUnknownFields(record map[string]any) {
	profile, _ := record["profile"].(map[string]any)
	for k, v := range record {
		if userFields[k] {
			continue
		}
		if profile == nil {
			profile = make(map[string]any)
		}
		profile[k] = v
		delete(record, k)
	}
	if profile != nil {
		record["profile"] = profile
	}
}

// importGlobal runs independently of the per-user loop. Benefits move into
// the tips collection; the config document is written with benefits forced
// empty.
func (im *Importer) importGlobal(raw json.RawMessage) (tips int, configMigrated bool) {
	if raw == nil {
		return 0, false
	}

	var global map[string]any
	if err := json.Unmarshal(raw, &global); err != nil {
		slog.Warn("snapshot.global_invalid", "error", err)
		return 0, false
	}

	if benefits, ok := global["benefits"].([]any); ok {
		for _, entry := range benefits {
			m, ok := entry.(map[string]any)
			if !ok {
				slog.Warn("snapshot.benefit_skipped", "reason", "not a mapping")
				continue
			}
			text, _ := m["text"].(string)
			if strings.TrimSpace(text) == "" {
				continue
			}
			if _, err := im.store.AddTip(models.Tip{Text: text}); err != nil {
				slog.Warn("snapshot.benefit_failed", "error", err)
				continue
			}
			tips++
		}
	}

	cfg := models.GlobalConfig{
		MotivationHours:    intSlice(global["motivation_hours"]),
		MotivationMessages: stringSlice(global["motivation_messages"]),
		Benefits:           []string{},
	}
	if len(cfg.MotivationHours) == 0 {
		cfg.MotivationHours = models.DefaultMotivationHours
	}
	if cfg.MotivationMessages == nil {
		cfg.MotivationMessages = []string{}
	}

	if err := im.store.SaveConfig(cfg); err != nil {
		slog.Warn("snapshot.config_failed", "error", err)
		return tips, false
	}
	return tips, true
}

func intSlice(v any) []int {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []int
	for _, entry := range list {
		if f, ok := entry.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
