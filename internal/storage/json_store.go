package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// taskDoc wraps a task for serialization: the completion ledger is kept raw
// so legacy subitem identifiers can be coerced on read.
type taskDoc struct {
	models.Task
	Completions json.RawMessage `json:"completions,omitempty"`
}

type storeFile struct {
	Version  int                            `json:"version"`
	Settings models.Settings                `json:"settings"`
	Tasks    map[string]taskDoc             `json:"tasks"`
	Entries  map[string]models.JournalEntry `json:"entries"`
}

// JSONStore is a single-file JSON-backed Provider.
type JSONStore struct {
	path  string
	store *storeFile
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &storeFile{
		Version: 1,
		Settings: models.Settings{
			Timezone:            constants.DefaultTimezone,
			WeekStart:           constants.DefaultWeekStart,
			AutoPromoteSubitems: constants.DefaultAutoPromoteSubitems,
		},
		Tasks:   make(map[string]taskDoc),
		Entries: make(map[string]models.JournalEntry),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'cadence init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &storeFile{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	// Ensure maps are initialized
	if s.store.Tasks == nil {
		s.store.Tasks = make(map[string]taskDoc)
	}
	if s.store.Entries == nil {
		s.store.Entries = make(map[string]models.JournalEntry)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) ensureLoaded() error {
	if s.store == nil {
		return s.Load()
	}
	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	if err := s.ensureLoaded(); err != nil {
		return models.Settings{}, err
	}
	return s.store.Settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.store.Settings = settings
	return s.save()
}

func encodeTask(task models.Task) (taskDoc, error) {
	completions, err := encodeCompletions(task.Completions)
	if err != nil {
		return taskDoc{}, fmt.Errorf("failed to marshal completion ledger: %w", err)
	}
	doc := taskDoc{Task: task}
	doc.Task.Completions = nil
	doc.Completions = completions
	return doc, nil
}

func decodeTask(doc taskDoc) models.Task {
	task := doc.Task
	task.Completions = decodeCompletions(doc.Completions)
	return task
}

func (s *JSONStore) AddTask(task models.Task) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if _, exists := s.store.Tasks[task.ID.String()]; exists {
		return fmt.Errorf("task with id %s already exists", task.ID)
	}
	doc, err := encodeTask(task)
	if err != nil {
		return err
	}
	s.store.Tasks[task.ID.String()] = doc
	return s.save()
}

func (s *JSONStore) GetTask(id uuid.UUID) (models.Task, error) {
	if err := s.ensureLoaded(); err != nil {
		return models.Task{}, err
	}
	doc, ok := s.store.Tasks[id.String()]
	if !ok || doc.DeletedAt != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return decodeTask(doc), nil
}

func (s *JSONStore) GetAllTasks(includeDeleted bool) ([]models.Task, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	var tasks []models.Task
	for _, doc := range s.store.Tasks {
		if doc.DeletedAt != nil && !includeDeleted {
			continue
		}
		tasks = append(tasks, decodeTask(doc))
	}
	return tasks, nil
}

func (s *JSONStore) UpdateTask(task models.Task) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	doc, err := encodeTask(task)
	if err != nil {
		return err
	}
	s.store.Tasks[task.ID.String()] = doc
	return s.save()
}

func (s *JSONStore) DeleteTask(id uuid.UUID) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	doc, ok := s.store.Tasks[id.String()]
	if !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if doc.DeletedAt != nil {
		return fmt.Errorf("task %s is already deleted", id)
	}
	now := time.Now().UTC()
	doc.DeletedAt = &now
	s.store.Tasks[id.String()] = doc
	return s.save()
}

func (s *JSONStore) RestoreTask(id uuid.UUID) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	doc, ok := s.store.Tasks[id.String()]
	if !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if doc.DeletedAt == nil {
		return fmt.Errorf("task %s is not deleted", id)
	}
	doc.DeletedAt = nil
	s.store.Tasks[id.String()] = doc
	return s.save()
}

func (s *JSONStore) AddEntry(entry models.JournalEntry) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if _, exists := s.store.Entries[entry.ID.String()]; exists {
		return fmt.Errorf("journal entry with id %s already exists", entry.ID)
	}
	s.store.Entries[entry.ID.String()] = entry
	return s.save()
}

func (s *JSONStore) GetEntry(id uuid.UUID) (models.JournalEntry, error) {
	if err := s.ensureLoaded(); err != nil {
		return models.JournalEntry{}, err
	}
	entry, ok := s.store.Entries[id.String()]
	if !ok || entry.DeletedAt != nil {
		return models.JournalEntry{}, fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	return entry, nil
}

func (s *JSONStore) GetEntriesForDay(day string) ([]models.JournalEntry, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	var entries []models.JournalEntry
	for _, entry := range s.store.Entries {
		if entry.DeletedAt == nil && entry.Day == day {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *JSONStore) GetAllEntries(includeDeleted bool) ([]models.JournalEntry, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	var entries []models.JournalEntry
	for _, entry := range s.store.Entries {
		if entry.DeletedAt != nil && !includeDeleted {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *JSONStore) UpdateEntry(entry models.JournalEntry) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.store.Entries[entry.ID.String()] = entry
	return s.save()
}

func (s *JSONStore) DeleteEntry(id uuid.UUID) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	entry, ok := s.store.Entries[id.String()]
	if !ok {
		return fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	if entry.DeletedAt != nil {
		return fmt.Errorf("journal entry %s is already deleted", id)
	}
	now := time.Now().UTC()
	entry.DeletedAt = &now
	s.store.Entries[id.String()] = entry
	return s.save()
}

func (s *JSONStore) RestoreEntry(id uuid.UUID) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	entry, ok := s.store.Entries[id.String()]
	if !ok {
		return fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	if entry.DeletedAt == nil {
		return fmt.Errorf("journal entry %s is not deleted", id)
	}
	entry.DeletedAt = nil
	s.store.Entries[id.String()] = entry
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
