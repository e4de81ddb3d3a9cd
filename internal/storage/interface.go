package storage

import "github.com/mdminegoub-netizen/suqya-bot/internal/models"

type Store interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Document operations. Set is a full replace of the named document; Add
	// inserts with a store-generated id. There is no transactional guarantee
	// across calls.
	Get(collection, id string) (Document, error)
	Set(collection, id string, doc Document) error
	Add(collection string, doc Document) (string, error)

	// Users
	SaveUser(models.User) error
	GetUser(id int64) (models.User, error)
	ListActiveUsers() ([]models.User, error)
	RegisterUser(id int64, timezone string) error
	SetUserActive(id int64, active bool) error
	TouchUser(id int64, lastActive, lastNotified string) error

	// Notes and letters
	AddNote(models.Note) (string, error)
	NotesForUser(userID int64) ([]models.Note, error)
	AddLetter(models.Letter) (string, error)
	LettersForUser(userID int64) ([]models.Letter, error)

	// Tips
	AddTip(models.Tip) (string, error)
	ListTips() ([]models.Tip, error)

	// Global config
	GetConfig() (models.GlobalConfig, error)
	SaveConfig(models.GlobalConfig) error

	// Utils
	GetConfigPath() string
}
