package storage

import (
	"errors"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
)

// ErrNotFound is returned when a requested record does not exist or has been
// soft-deleted.
var ErrNotFound = errors.New("record not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Tasks
	AddTask(models.Task) error
	GetTask(id uuid.UUID) (models.Task, error)
	GetAllTasks(includeDeleted bool) ([]models.Task, error)
	UpdateTask(models.Task) error
	DeleteTask(id uuid.UUID) error
	RestoreTask(id uuid.UUID) error

	// Journal entries
	AddEntry(models.JournalEntry) error
	GetEntry(id uuid.UUID) (models.JournalEntry, error)
	GetEntriesForDay(day string) ([]models.JournalEntry, error)
	GetAllEntries(includeDeleted bool) ([]models.JournalEntry, error)
	UpdateEntry(models.JournalEntry) error
	DeleteEntry(id uuid.UUID) error
	RestoreEntry(id uuid.UUID) error

	// Utils
	GetConfigPath() string
}
