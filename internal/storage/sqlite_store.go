package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mdminegoub-netizen/suqya-bot/internal/migration"
	"github.com/mdminegoub-netizen/suqya-bot/internal/models"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Seed the singleton config so the dispatcher can run before any legacy
	// snapshot has been imported.
	if _, err := s.GetConfig(); errors.Is(err, ErrNotFound) {
		defaults := models.GlobalConfig{
			MotivationHours:    models.DefaultMotivationHours,
			MotivationMessages: []string{},
			Benefits:           []string{},
		}
		if err := s.SaveConfig(defaults); err != nil {
			return fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'suqya init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	// Validate schema version only when the migrations directory is present;
	// production installs may not ship it.
	migrationsPath := s.getMigrationsPath()
	if _, err := os.Stat(migrationsPath); err == nil {
		if err := s.validateSchemaVersion(); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStore) open() error {
	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return &ConnectionError{Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return &ConnectionError{Err: err}
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) runMigrations() error {
	runner := migration.NewRunner(s.db, s.getMigrationsPath())
	_, err := runner.ApplyMigrations(nil)
	return err
}

func (s *SQLiteStore) validateSchemaVersion() error {
	runner := migration.NewRunner(s.db, s.getMigrationsPath())
	return runner.ValidateVersion()
}

func (s *SQLiteStore) getMigrationsPath() string {
	if envPath := os.Getenv("SUQYA_MIGRATIONS_PATH"); envPath != "" {
		if absPath, err := filepath.Abs(envPath); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	paths := []string{
		"migrations",
		"../migrations",
		"../../migrations",
		filepath.Join(filepath.Dir(os.Args[0]), "migrations"),
		filepath.Join(filepath.Dir(os.Args[0]), "..", "migrations"),
	}

	for _, path := range paths {
		if absPath, err := filepath.Abs(path); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return "migrations"
}

func (s *SQLiteStore) Get(collection, id string) (Document, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	var data string
	err := s.db.QueryRow("SELECT data FROM "+collection+" WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("corrupt document %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *SQLiteStore) Set(collection, id string, doc Document) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	switch collection {
	case CollectionUsers:
		_, err = s.db.Exec(
			"INSERT OR REPLACE INTO users (id, active, data) VALUES (?, ?, ?)",
			id, docActive(doc), string(data),
		)
	case CollectionNotes, CollectionLetters:
		_, err = s.db.Exec(
			"INSERT OR REPLACE INTO "+collection+" (id, user_id, data) VALUES (?, ?, ?)",
			id, docUserID(doc), string(data),
		)
	default:
		_, err = s.db.Exec(
			"INSERT OR REPLACE INTO "+collection+" (id, data) VALUES (?, ?)",
			id, string(data),
		)
	}
	return err
}

func (s *SQLiteStore) Add(collection string, doc Document) (string, error) {
	id := uuid.NewString()
	doc["id"] = id
	if err := s.Set(collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) SaveUser(u models.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	doc, err := encodeDoc(u)
	if err != nil {
		return err
	}
	return s.Set(CollectionUsers, userKey(u.ID), doc)
}

func (s *SQLiteStore) GetUser(id int64) (models.User, error) {
	doc, err := s.Get(CollectionUsers, userKey(id))
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := decodeDoc(doc, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *SQLiteStore) ListActiveUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT data FROM users WHERE active = 1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var u models.User
		if err := json.Unmarshal([]byte(data), &u); err != nil {
			return nil, fmt.Errorf("corrupt user document: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) RegisterUser(id int64, timezone string) error {
	u, err := s.GetUser(id)
	if errors.Is(err, ErrNotFound) {
		u = models.User{
			ID:        id,
			Active:    true,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
	} else if err != nil {
		return err
	}
	u.Timezone = timezone
	return s.SaveUser(u)
}

func (s *SQLiteStore) SetUserActive(id int64, active bool) error {
	u, err := s.GetUser(id)
	if err != nil {
		return err
	}
	u.Active = active
	return s.SaveUser(u)
}

func (s *SQLiteStore) TouchUser(id int64, lastActive, lastNotified string) error {
	u, err := s.GetUser(id)
	if err != nil {
		return err
	}
	if lastActive != "" {
		u.LastActive = lastActive
	}
	if lastNotified != "" {
		u.LastNotified = lastNotified
	}
	return s.SaveUser(u)
}

func (s *SQLiteStore) AddNote(n models.Note) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	doc, err := encodeDoc(n)
	if err != nil {
		return "", err
	}
	return s.Add(CollectionNotes, doc)
}

func (s *SQLiteStore) NotesForUser(userID int64) ([]models.Note, error) {
	rows, err := s.db.Query("SELECT data FROM notes WHERE user_id = ?", userKey(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var n models.Note
		if err := json.Unmarshal([]byte(data), &n); err != nil {
			return nil, fmt.Errorf("corrupt note document: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) AddLetter(l models.Letter) (string, error) {
	if err := l.Validate(); err != nil {
		return "", err
	}
	doc, err := encodeDoc(l)
	if err != nil {
		return "", err
	}
	return s.Add(CollectionLetters, doc)
}

func (s *SQLiteStore) LettersForUser(userID int64) ([]models.Letter, error) {
	rows, err := s.db.Query("SELECT data FROM letters WHERE user_id = ?", userKey(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var letters []models.Letter
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var l models.Letter
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, fmt.Errorf("corrupt letter document: %w", err)
		}
		letters = append(letters, l)
	}
	return letters, rows.Err()
}

func (s *SQLiteStore) AddTip(t models.Tip) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	doc, err := encodeDoc(t)
	if err != nil {
		return "", err
	}
	return s.Add(CollectionTips, doc)
}

func (s *SQLiteStore) ListTips() ([]models.Tip, error) {
	rows, err := s.db.Query("SELECT data FROM tips")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tips []models.Tip
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var t models.Tip
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, fmt.Errorf("corrupt tip document: %w", err)
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}

func (s *SQLiteStore) GetConfig() (models.GlobalConfig, error) {
	doc, err := s.Get(CollectionConfig, models.ConfigDocumentID)
	if err != nil {
		return models.GlobalConfig{}, err
	}
	var cfg models.GlobalConfig
	if err := decodeDoc(doc, &cfg); err != nil {
		return models.GlobalConfig{}, err
	}
	return cfg, nil
}

func (s *SQLiteStore) SaveConfig(cfg models.GlobalConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	doc, err := encodeDoc(cfg)
	if err != nil {
		return err
	}
	return s.Set(CollectionConfig, models.ConfigDocumentID, doc)
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) GetMigrationsPath() string {
	return s.getMigrationsPath()
}
