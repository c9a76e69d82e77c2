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

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	timezone TEXT NOT NULL,
	week_start TEXT NOT NULL,
	auto_promote_subitems BOOLEAN NOT NULL,
	device_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	subitems TEXT NOT NULL DEFAULT '[]',
	rule TEXT,
	point_value INTEGER NOT NULL DEFAULT 0,
	has_notification BOOLEAN NOT NULL DEFAULT 0,
	notify_lead_min INTEGER NOT NULL DEFAULT 0,
	completions TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	deleted_at TEXT
);

CREATE TABLE IF NOT EXISTS journal_entries (
	id TEXT PRIMARY KEY,
	day TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	mood TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	attachments TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_day ON journal_entries(day);
`

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		defaults := models.Settings{
			Timezone:            constants.DefaultTimezone,
			WeekStart:           constants.DefaultWeekStart,
			AutoPromoteSubitems: constants.DefaultAutoPromoteSubitems,
		}
		if err := s.SaveSettings(defaults); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'cadence init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
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

func (s *SQLiteStore) GetSettings() (models.Settings, error) {
	row := s.db.QueryRow("SELECT timezone, week_start, auto_promote_subitems, device_name FROM settings WHERE id = 1")

	var settings models.Settings
	if err := row.Scan(&settings.Timezone, &settings.WeekStart, &settings.AutoPromoteSubitems, &settings.DeviceName); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func (s *SQLiteStore) SaveSettings(settings models.Settings) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO settings (id, timezone, week_start, auto_promote_subitems, device_name)
		VALUES (1, ?, ?, ?, ?)`,
		settings.Timezone, settings.WeekStart, settings.AutoPromoteSubitems, settings.DeviceName,
	)
	return err
}

func (s *SQLiteStore) AddTask(task models.Task) error {
	return s.UpdateTask(task)
}

func (s *SQLiteStore) UpdateTask(task models.Task) error {
	tagsJSON, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	subitemsJSON, err := json.Marshal(task.Subitems)
	if err != nil {
		return fmt.Errorf("failed to marshal subitems: %w", err)
	}

	var ruleJSON sql.NullString
	if task.Rule != nil {
		data, err := json.Marshal(task.Rule)
		if err != nil {
			return fmt.Errorf("failed to marshal recurrence rule: %w", err)
		}
		ruleJSON = sql.NullString{String: string(data), Valid: true}
	}

	var completionsJSON sql.NullString
	if data, err := encodeCompletions(task.Completions); err != nil {
		return fmt.Errorf("failed to marshal completion ledger: %w", err)
	} else if data != nil {
		completionsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var deletedAt sql.NullString
	if task.DeletedAt != nil {
		deletedAt = sql.NullString{String: task.DeletedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO tasks (
			id, name, notes, tags, subitems, rule, point_value,
			has_notification, notify_lead_min, completions, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID.String(), task.Name, task.Notes, string(tagsJSON), string(subitemsJSON), ruleJSON,
		task.PointValue, task.HasNotification, task.NotifyLeadMin, completionsJSON,
		task.CreatedAt.UTC().Format(time.RFC3339Nano), task.UpdatedAt.UTC().Format(time.RFC3339Nano), deletedAt,
	)
	return err
}

func (s *SQLiteStore) scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var (
		task            models.Task
		id              string
		tagsJSON        string
		subitemsJSON    string
		ruleJSON        sql.NullString
		completionsJSON sql.NullString
		createdAt       string
		updatedAt       string
		deletedAt       sql.NullString
	)

	err := row.Scan(
		&id, &task.Name, &task.Notes, &tagsJSON, &subitemsJSON, &ruleJSON, &task.PointValue,
		&task.HasNotification, &task.NotifyLeadMin, &completionsJSON, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	task.ID, err = uuid.Parse(id)
	if err != nil {
		return models.Task{}, fmt.Errorf("invalid task id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &task.Tags); err != nil {
		return models.Task{}, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(subitemsJSON), &task.Subitems); err != nil {
		return models.Task{}, fmt.Errorf("failed to unmarshal subitems: %w", err)
	}
	if ruleJSON.Valid {
		task.Rule = &models.RecurrenceRule{}
		if err := json.Unmarshal([]byte(ruleJSON.String), task.Rule); err != nil {
			return models.Task{}, fmt.Errorf("failed to unmarshal recurrence rule: %w", err)
		}
	}
	if completionsJSON.Valid {
		task.Completions = decodeCompletions([]byte(completionsJSON.String))
	}
	if task.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return models.Task{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if task.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return models.Task{}, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("invalid deleted_at %q: %w", deletedAt.String, err)
		}
		task.DeletedAt = &t
	}

	return task, nil
}

const taskColumns = `id, name, notes, tags, subitems, rule, point_value,
	has_notification, notify_lead_min, completions, created_at, updated_at, deleted_at`

func (s *SQLiteStore) GetTask(id uuid.UUID) (models.Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ? AND deleted_at IS NULL", id.String())
	task, err := s.scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return task, err
}

func (s *SQLiteStore) GetAllTasks(includeDeleted bool) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) DeleteTask(id uuid.UUID) error {
	return s.softDelete("tasks", id)
}

func (s *SQLiteStore) RestoreTask(id uuid.UUID) error {
	return s.restore("tasks", id)
}

func (s *SQLiteStore) AddEntry(entry models.JournalEntry) error {
	return s.UpdateEntry(entry)
}

func (s *SQLiteStore) UpdateEntry(entry models.JournalEntry) error {
	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	attachmentsJSON, err := json.Marshal(entry.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	var deletedAt sql.NullString
	if entry.DeletedAt != nil {
		deletedAt = sql.NullString{String: entry.DeletedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO journal_entries (
			id, day, title, body, mood, tags, attachments, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.Day, entry.Title, entry.Text, entry.Mood,
		string(tagsJSON), string(attachmentsJSON),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano), entry.UpdatedAt.UTC().Format(time.RFC3339Nano), deletedAt,
	)
	return err
}

func (s *SQLiteStore) scanEntry(row interface{ Scan(...any) error }) (models.JournalEntry, error) {
	var (
		entry           models.JournalEntry
		id              string
		tagsJSON        string
		attachmentsJSON string
		createdAt       string
		updatedAt       string
		deletedAt       sql.NullString
	)

	err := row.Scan(&id, &entry.Day, &entry.Title, &entry.Text, &entry.Mood,
		&tagsJSON, &attachmentsJSON, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return models.JournalEntry{}, err
	}

	entry.ID, err = uuid.Parse(id)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("invalid journal entry id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &entry.Tags); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(attachmentsJSON), &entry.Attachments); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to unmarshal attachments: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return models.JournalEntry{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return models.JournalEntry{}, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return models.JournalEntry{}, fmt.Errorf("invalid deleted_at %q: %w", deletedAt.String, err)
		}
		entry.DeletedAt = &t
	}

	return entry, nil
}

const entryColumns = `id, day, title, body, mood, tags, attachments, created_at, updated_at, deleted_at`

func (s *SQLiteStore) GetEntry(id uuid.UUID) (models.JournalEntry, error) {
	row := s.db.QueryRow("SELECT "+entryColumns+" FROM journal_entries WHERE id = ? AND deleted_at IS NULL", id.String())
	entry, err := s.scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	return entry, err
}

func (s *SQLiteStore) GetEntriesForDay(day string) ([]models.JournalEntry, error) {
	rows, err := s.db.Query("SELECT "+entryColumns+" FROM journal_entries WHERE day = ? AND deleted_at IS NULL", day)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()
	return s.collectEntries(rows)
}

func (s *SQLiteStore) GetAllEntries(includeDeleted bool) ([]models.JournalEntry, error) {
	query := "SELECT " + entryColumns + " FROM journal_entries"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()
	return s.collectEntries(rows)
}

func (s *SQLiteStore) collectEntries(rows *sql.Rows) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	for rows.Next() {
		entry, err := s.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) DeleteEntry(id uuid.UUID) error {
	return s.softDelete("journal_entries", id)
}

func (s *SQLiteStore) RestoreEntry(id uuid.UUID) error {
	return s.restore("journal_entries", id)
}

func (s *SQLiteStore) softDelete(table string, id uuid.UUID) error {
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM "+table+" WHERE id = ?", id.String()).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to check record existence: %w", err)
	}
	if deletedAt.Valid {
		return fmt.Errorf("record %s is already deleted", id)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec("UPDATE "+table+" SET deleted_at = ? WHERE id = ?", now, id.String())
	return err
}

func (s *SQLiteStore) restore(table string, id uuid.UUID) error {
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM "+table+" WHERE id = ?", id.String()).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to check record existence: %w", err)
	}
	if !deletedAt.Valid {
		return fmt.Errorf("record %s is not deleted", id)
	}

	_, err = s.db.Exec("UPDATE "+table+" SET deleted_at = NULL WHERE id = ?", id.String())
	return err
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}
