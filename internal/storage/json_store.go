package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mdminegoub-netizen/suqya-bot/internal/models"
)

type fileData struct {
	Version     int                            `json:"version"`
	Collections map[string]map[string]Document `json:"collections"`
}

// JSONStore keeps every collection in a single JSON file: a dependency-free
// local mode that doubles as the test backend. The mutex is required because
// the snapshot importer writes with bounded parallelism.
type JSONStore struct {
	path string

	mu   sync.Mutex
	data *fileData
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = emptyFileData()
	cfg := models.GlobalConfig{
		MotivationHours:    models.DefaultMotivationHours,
		MotivationMessages: []string{},
		Benefits:           []string{},
	}
	doc, err := encodeDoc(cfg)
	if err != nil {
		return err
	}
	s.data.Collections[CollectionConfig][models.ConfigDocumentID] = doc

	return s.save()
}

func (s *JSONStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'suqya init' first")
		}
		return &ConnectionError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = &fileData{}
	if err := json.Unmarshal(raw, s.data); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.data.Collections == nil {
		s.data.Collections = map[string]map[string]Document{}
	}
	for name := range collections {
		if s.data.Collections[name] == nil {
			s.data.Collections[name] = map[string]Document{}
		}
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func emptyFileData() *fileData {
	data := &fileData{
		Version:     1,
		Collections: map[string]map[string]Document{},
	}
	for name := range collections {
		data.Collections[name] = map[string]Document{}
	}
	return data
}

// save writes the whole file; callers must hold mu.
func (s *JSONStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) Get(collection, id string) (Document, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	doc, ok := s.data.Collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return doc, nil
}

func (s *JSONStore) Set(collection, id string, doc Document) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.data.Collections[collection][id] = doc
	return s.save()
}

func (s *JSONStore) Add(collection string, doc Document) (string, error) {
	id := uuid.NewString()
	doc["id"] = id
	if err := s.Set(collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *JSONStore) SaveUser(u models.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	doc, err := encodeDoc(u)
	if err != nil {
		return err
	}
	return s.Set(CollectionUsers, userKey(u.ID), doc)
}

func (s *JSONStore) GetUser(id int64) (models.User, error) {
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

func (s *JSONStore) ListActiveUsers() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	var users []models.User
	for _, doc := range s.data.Collections[CollectionUsers] {
		if !docActive(doc) {
			continue
		}
		var u models.User
		if err := decodeDoc(doc, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *JSONStore) RegisterUser(id int64, timezone string) error {
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

func (s *JSONStore) SetUserActive(id int64, active bool) error {
	u, err := s.GetUser(id)
	if err != nil {
		return err
	}
	u.Active = active
	return s.SaveUser(u)
}

func (s *JSONStore) TouchUser(id int64, lastActive, lastNotified string) error {
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

func (s *JSONStore) AddNote(n models.Note) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	doc, err := encodeDoc(n)
	if err != nil {
		return "", err
	}
	return s.Add(CollectionNotes, doc)
}

func (s *JSONStore) NotesForUser(userID int64) ([]models.Note, error) {
	docs, err := s.collectionDocs(CollectionNotes)
	if err != nil {
		return nil, err
	}

	key := userKey(userID)
	var notes []models.Note
	for _, doc := range docs {
		if docUserID(doc) != key {
			continue
		}
		var n models.Note
		if err := decodeDoc(doc, &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func (s *JSONStore) AddLetter(l models.Letter) (string, error) {
	if err := l.Validate(); err != nil {
		return "", err
	}
	doc, err := encodeDoc(l)
	if err != nil {
		return "", err
	}
	return s.Add(CollectionLetters, doc)
}

func (s *JSONStore) LettersForUser(userID int64) ([]models.Letter, error) {
	docs, err := s.collectionDocs(CollectionLetters)
	if err != nil {
		return nil, err
	}

	key := userKey(userID)
	var letters []models.Letter
	for _, doc := range docs {
		if docUserID(doc) != key {
			continue
		}
		var l models.Letter
		if err := decodeDoc(doc, &l); err != nil {
			return nil, err
		}
		letters = append(letters, l)
	}
	return letters, nil
}

func (s *JSONStore) AddTip(t models.Tip) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	doc, err := encodeDoc(t)
	if err != nil {
		return "", err
	}
	return s.Add(CollectionTips, doc)
}

func (s *JSONStore) ListTips() ([]models.Tip, error) {
	docs, err := s.collectionDocs(CollectionTips)
	if err != nil {
		return nil, err
	}

	var tips []models.Tip
	for _, doc := range docs {
		var t models.Tip
		if err := decodeDoc(doc, &t); err != nil {
			return nil, err
		}
		tips = append(tips, t)
	}
	return tips, nil
}

func (s *JSONStore) GetConfig() (models.GlobalConfig, error) {
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

func (s *JSONStore) SaveConfig(cfg models.GlobalConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	doc, err := encodeDoc(cfg)
	if err != nil {
		return err
	}
	return s.Set(CollectionConfig, models.ConfigDocumentID, doc)
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// collectionDocs snapshots a collection under the lock so decode work happens
// outside it.
func (s *JSONStore) collectionDocs(collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	docs := make([]Document, 0, len(s.data.Collections[collection]))
	for _, doc := range s.data.Collections[collection] {
		docs = append(docs, doc)
	}
	return docs, nil
}
