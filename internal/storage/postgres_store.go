package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// PostgresStore backs a shared household install where several devices
// talk to one central database instead of a local file.
type PostgresStore struct {
	connStr string
	db      *sql.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{connStr: connStr}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	timezone TEXT NOT NULL,
	week_start TEXT NOT NULL,
	auto_promote_subitems BOOLEAN NOT NULL,
	device_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tasks (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	tags JSONB NOT NULL DEFAULT '[]',
	subitems JSONB NOT NULL DEFAULT '[]',
	rule JSONB,
	point_value INTEGER NOT NULL DEFAULT 0,
	has_notification BOOLEAN NOT NULL DEFAULT FALSE,
	notify_lead_min INTEGER NOT NULL DEFAULT 0,
	completions JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS journal_entries (
	id UUID PRIMARY KEY,
	day TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	mood TEXT NOT NULL DEFAULT '',
	tags JSONB NOT NULL DEFAULT '[]',
	attachments JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_day ON journal_entries(day);
`

func (s *PostgresStore) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec(postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

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

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) GetSettings() (models.Settings, error) {
	row := s.db.QueryRow("SELECT timezone, week_start, auto_promote_subitems, device_name FROM settings WHERE id = 1")

	var settings models.Settings
	if err := row.Scan(&settings.Timezone, &settings.WeekStart, &settings.AutoPromoteSubitems, &settings.DeviceName); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func (s *PostgresStore) SaveSettings(settings models.Settings) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (id, timezone, week_start, auto_promote_subitems, device_name)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			week_start = EXCLUDED.week_start,
			auto_promote_subitems = EXCLUDED.auto_promote_subitems,
			device_name = EXCLUDED.device_name`,
		settings.Timezone, settings.WeekStart, settings.AutoPromoteSubitems, settings.DeviceName,
	)
	return err
}

func (s *PostgresStore) AddTask(task models.Task) error {
	return s.UpdateTask(task)
}

func (s *PostgresStore) UpdateTask(task models.Task) error {
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

	var deletedAt sql.NullTime
	if task.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: *task.DeletedAt, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO tasks (
			id, name, notes, tags, subitems, rule, point_value,
			has_notification, notify_lead_min, completions, created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			notes = EXCLUDED.notes,
			tags = EXCLUDED.tags,
			subitems = EXCLUDED.subitems,
			rule = EXCLUDED.rule,
			point_value = EXCLUDED.point_value,
			has_notification = EXCLUDED.has_notification,
			notify_lead_min = EXCLUDED.notify_lead_min,
			completions = EXCLUDED.completions,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`,
		task.ID, task.Name, task.Notes, string(tagsJSON), string(subitemsJSON), ruleJSON,
		task.PointValue, task.HasNotification, task.NotifyLeadMin, completionsJSON,
		task.CreatedAt, task.UpdatedAt, deletedAt,
	)
	return err
}

func (s *PostgresStore) scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var (
		task            models.Task
		id              string
		tagsJSON        string
		subitemsJSON    string
		ruleJSON        sql.NullString
		completionsJSON sql.NullString
		deletedAt       sql.NullTime
	)

	err := row.Scan(
		&id, &task.Name, &task.Notes, &tagsJSON, &subitemsJSON, &ruleJSON, &task.PointValue,
		&task.HasNotification, &task.NotifyLeadMin, &completionsJSON,
		&task.CreatedAt, &task.UpdatedAt, &deletedAt,
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
	if deletedAt.Valid {
		t := deletedAt.Time
		task.DeletedAt = &t
	}

	return task, nil
}

func (s *PostgresStore) GetTask(id uuid.UUID) (models.Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND deleted_at IS NULL", id)
	task, err := s.scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return task, err
}

func (s *PostgresStore) GetAllTasks(includeDeleted bool) ([]models.Task, error) {
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

func (s *PostgresStore) DeleteTask(id uuid.UUID) error {
	return s.softDelete("tasks", id)
}

func (s *PostgresStore) RestoreTask(id uuid.UUID) error {
	return s.restore("tasks", id)
}

func (s *PostgresStore) AddEntry(entry models.JournalEntry) error {
	return s.UpdateEntry(entry)
}

func (s *PostgresStore) UpdateEntry(entry models.JournalEntry) error {
	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	attachmentsJSON, err := json.Marshal(entry.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	var deletedAt sql.NullTime
	if entry.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: *entry.DeletedAt, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO journal_entries (
			id, day, title, body, mood, tags, attachments, created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			day = EXCLUDED.day,
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			mood = EXCLUDED.mood,
			tags = EXCLUDED.tags,
			attachments = EXCLUDED.attachments,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`,
		entry.ID, entry.Day, entry.Title, entry.Text, entry.Mood,
		string(tagsJSON), string(attachmentsJSON), entry.CreatedAt, entry.UpdatedAt, deletedAt,
	)
	return err
}

func (s *PostgresStore) scanEntry(row interface{ Scan(...any) error }) (models.JournalEntry, error) {
	var (
		entry           models.JournalEntry
		id              string
		tagsJSON        string
		attachmentsJSON string
		deletedAt       sql.NullTime
	)

	err := row.Scan(&id, &entry.Day, &entry.Title, &entry.Text, &entry.Mood,
		&tagsJSON, &attachmentsJSON, &entry.CreatedAt, &entry.UpdatedAt, &deletedAt)
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
	if deletedAt.Valid {
		t := deletedAt.Time
		entry.DeletedAt = &t
	}

	return entry, nil
}

func (s *PostgresStore) GetEntry(id uuid.UUID) (models.JournalEntry, error) {
	row := s.db.QueryRow("SELECT "+entryColumns+" FROM journal_entries WHERE id = $1 AND deleted_at IS NULL", id)
	entry, err := s.scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	return entry, err
}

func (s *PostgresStore) GetEntriesForDay(day string) ([]models.JournalEntry, error) {
	rows, err := s.db.Query("SELECT "+entryColumns+" FROM journal_entries WHERE day = $1 AND deleted_at IS NULL", day)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()
	return s.collectEntries(rows)
}

func (s *PostgresStore) GetAllEntries(includeDeleted bool) ([]models.JournalEntry, error) {
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

func (s *PostgresStore) collectEntries(rows *sql.Rows) ([]models.JournalEntry, error) {
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

func (s *PostgresStore) DeleteEntry(id uuid.UUID) error {
	return s.softDelete("journal_entries", id)
}

func (s *PostgresStore) RestoreEntry(id uuid.UUID) error {
	return s.restore("journal_entries", id)
}

func (s *PostgresStore) softDelete(table string, id uuid.UUID) error {
	var deletedAt sql.NullTime
	err := s.db.QueryRow("SELECT deleted_at FROM "+table+" WHERE id = $1", id).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to check record existence: %w", err)
	}
	if deletedAt.Valid {
		return fmt.Errorf("record %s is already deleted", id)
	}

	_, err = s.db.Exec("UPDATE "+table+" SET deleted_at = $1 WHERE id = $2", time.Now().UTC(), id)
	return err
}

func (s *PostgresStore) restore(table string, id uuid.UUID) error {
	var deletedAt sql.NullTime
	err := s.db.QueryRow("SELECT deleted_at FROM "+table+" WHERE id = $1", id).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to check record existence: %w", err)
	}
	if !deletedAt.Valid {
		return fmt.Errorf("record %s is not deleted", id)
	}

	_, err = s.db.Exec("UPDATE "+table+" SET deleted_at = NULL WHERE id = $1", id)
	return err
}

func (s *PostgresStore) GetConfigPath() string {
	return s.connStr
}
