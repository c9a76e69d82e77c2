package sync

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/points"
	"github.com/julianstephens/cadence/internal/storage"
)

type fakeChannel struct {
	pushedTasks    []models.Task
	pushedEntries  []models.JournalEntry
	deletedTasks   []uuid.UUID
	deletedEntries []uuid.UUID
}

func (c *fakeChannel) PushTask(t models.Task) error {
	c.pushedTasks = append(c.pushedTasks, t)
	return nil
}

func (c *fakeChannel) PushEntry(e models.JournalEntry) error {
	c.pushedEntries = append(c.pushedEntries, e)
	return nil
}

func (c *fakeChannel) DeleteTask(id uuid.UUID) error {
	c.deletedTasks = append(c.deletedTasks, id)
	return nil
}

func (c *fakeChannel) DeleteEntry(id uuid.UUID) error {
	c.deletedEntries = append(c.deletedEntries, id)
	return nil
}

// failingStore simulates a transient storage fault on reads while delegating
// everything else to the real store.
type failingStore struct {
	storage.Provider
	readErr error
}

func (s *failingStore) GetTask(id uuid.UUID) (models.Task, error) {
	return models.Task{}, s.readErr
}

func (s *failingStore) GetEntry(id uuid.UUID) (models.JournalEntry, error) {
	return models.JournalEntry{}, s.readErr
}

var testBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupOrchestrator(t *testing.T, opts ...Option) (*Orchestrator, *fakeChannel, storage.Provider) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	channel := &fakeChannel{}
	opts = append([]Option{WithClock(func() time.Time { return testBase })}, opts...)
	return NewOrchestrator(store, channel, opts...), channel, store
}

func TestOnRemoteTaskAdoptsUnknown(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	remote := models.Task{
		ID:        uuid.New(),
		Name:      "Water plants",
		CreatedAt: testBase,
		UpdatedAt: testBase,
	}
	if err := o.OnRemoteTask(remote); err != nil {
		t.Fatalf("OnRemoteTask failed: %v", err)
	}

	got, err := store.GetTask(remote.ID)
	if err != nil {
		t.Fatalf("adopted task not persisted: %v", err)
	}
	if got.Name != "Water plants" {
		t.Errorf("expected adopted name, got %q", got.Name)
	}
	if len(channel.pushedTasks) != 0 {
		t.Errorf("adopting a remote record should not push, got %d pushes", len(channel.pushedTasks))
	}
}

func TestOnRemoteTaskStoreFaultDoesNotAdopt(t *testing.T) {
	_, channel, store := setupOrchestrator(t)

	id := uuid.New()
	local := models.Task{ID: id, Name: "Unsynced local edits", CreatedAt: testBase, UpdatedAt: testBase.Add(time.Hour)}
	if err := store.AddTask(local); err != nil {
		t.Fatalf("failed to seed local task: %v", err)
	}

	// A read fault is not "record unknown": the stale remote must not be
	// adopted over the local record.
	faulty := &failingStore{Provider: store, readErr: errors.New("database is locked")}
	o := NewOrchestrator(faulty, channel, WithClock(func() time.Time { return testBase }))

	remote := local
	remote.Name = "Stale remote"
	remote.UpdatedAt = testBase

	if err := o.OnRemoteTask(remote); err == nil {
		t.Fatal("expected the store fault to surface as an error")
	}

	got, err := store.GetTask(id)
	if err != nil {
		t.Fatalf("failed to read back local task: %v", err)
	}
	if got.Name != "Unsynced local edits" {
		t.Errorf("local record overwritten during store fault, got %q", got.Name)
	}
	if len(channel.pushedTasks) != 0 {
		t.Errorf("expected no push during store fault, got %d", len(channel.pushedTasks))
	}
}

func TestOnRemoteEntryStoreFaultDoesNotAdopt(t *testing.T) {
	_, channel, store := setupOrchestrator(t)

	id := uuid.New()
	local := models.JournalEntry{ID: id, Day: "2024-03-01", Text: "Unsynced draft", CreatedAt: testBase, UpdatedAt: testBase.Add(time.Hour)}
	if err := store.AddEntry(local); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	faulty := &failingStore{Provider: store, readErr: errors.New("connection reset")}
	o := NewOrchestrator(faulty, channel, WithClock(func() time.Time { return testBase }))

	remote := local
	remote.Text = "Stale remote"
	remote.UpdatedAt = testBase

	if err := o.OnRemoteEntry(remote); err == nil {
		t.Fatal("expected the store fault to surface as an error")
	}

	got, err := store.GetEntry(id)
	if err != nil {
		t.Fatalf("failed to read back entry: %v", err)
	}
	if got.Text != "Unsynced draft" {
		t.Errorf("local entry overwritten during store fault, got %q", got.Text)
	}
	if len(channel.pushedEntries) != 0 {
		t.Errorf("expected no push during store fault, got %d", len(channel.pushedEntries))
	}
}

func TestOnRemoteTaskRedeliveryDoesNotEcho(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	id := uuid.New()
	task := models.Task{
		ID:   id,
		Name: "Water plants",
		Tags: []string{"garden", "home"},
		Completions: map[string]models.CompletionRecord{
			"2024-02-28": {Day: "2024-02-28", IsDone: true},
		},
		CreatedAt: testBase,
		UpdatedAt: testBase,
	}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("failed to seed local task: %v", err)
	}

	// Delivering a record the local side already has must stay quiet, or two
	// converged devices echo the record back and forth forever.
	for i := 0; i < 3; i++ {
		if err := o.OnRemoteTask(task); err != nil {
			t.Fatalf("OnRemoteTask failed on redelivery %d: %v", i, err)
		}
	}

	if len(channel.pushedTasks) != 0 {
		t.Errorf("redelivery of a converged record should not push, got %d", len(channel.pushedTasks))
	}
}

func TestOnRemoteEntryRedeliveryDoesNotEcho(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	id := uuid.New()
	entry := models.JournalEntry{
		ID:        id,
		Day:       "2024-03-01",
		Text:      "Repotted the ficus",
		Tags:      []string{"garden"},
		CreatedAt: testBase,
		UpdatedAt: testBase,
	}
	if err := store.AddEntry(entry); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := o.OnRemoteEntry(entry); err != nil {
			t.Fatalf("OnRemoteEntry failed on redelivery %d: %v", i, err)
		}
	}

	if len(channel.pushedEntries) != 0 {
		t.Errorf("redelivery of a converged entry should not push, got %d", len(channel.pushedEntries))
	}
}

func TestOnRemoteTaskRemoteDominanceNoPush(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	id := uuid.New()
	local := models.Task{ID: id, Name: "Old name", CreatedAt: testBase, UpdatedAt: testBase}
	if err := store.AddTask(local); err != nil {
		t.Fatalf("failed to seed local task: %v", err)
	}

	remote := local
	remote.Name = "New name"
	remote.UpdatedAt = testBase.Add(10 * time.Minute)

	if err := o.OnRemoteTask(remote); err != nil {
		t.Fatalf("OnRemoteTask failed: %v", err)
	}

	got, err := store.GetTask(id)
	if err != nil {
		t.Fatalf("merged task not persisted: %v", err)
	}
	if got.Name != "New name" {
		t.Errorf("expected remote name to win, got %q", got.Name)
	}
	if len(channel.pushedTasks) != 0 {
		t.Errorf("remote dominance with nothing new locally should not push, got %d", len(channel.pushedTasks))
	}
}

func TestOnRemoteTaskLocalWinsPushes(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	id := uuid.New()
	local := models.Task{ID: id, Name: "Fresh local edit", CreatedAt: testBase, UpdatedAt: testBase.Add(10 * time.Minute)}
	if err := store.AddTask(local); err != nil {
		t.Fatalf("failed to seed local task: %v", err)
	}

	remote := local
	remote.Name = "Stale remote"
	remote.UpdatedAt = testBase

	if err := o.OnRemoteTask(remote); err != nil {
		t.Fatalf("OnRemoteTask failed: %v", err)
	}

	if len(channel.pushedTasks) != 1 {
		t.Fatalf("expected 1 push when local wins, got %d", len(channel.pushedTasks))
	}
	if channel.pushedTasks[0].Name != "Fresh local edit" {
		t.Errorf("pushed task has wrong name %q", channel.pushedTasks[0].Name)
	}
}

func TestOnRemoteTaskLedgerGrowthPushes(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	id := uuid.New()
	local := models.Task{
		ID:   id,
		Name: "Old name",
		Completions: map[string]models.CompletionRecord{
			"2024-02-28": {Day: "2024-02-28", IsDone: true},
		},
		CreatedAt: testBase,
		UpdatedAt: testBase,
	}
	if err := store.AddTask(local); err != nil {
		t.Fatalf("failed to seed local task: %v", err)
	}

	// Remote dominates on content but has never seen the local ledger day.
	remote := models.Task{
		ID:        id,
		Name:      "New name",
		CreatedAt: testBase,
		UpdatedAt: testBase.Add(10 * time.Minute),
	}

	if err := o.OnRemoteTask(remote); err != nil {
		t.Fatalf("OnRemoteTask failed: %v", err)
	}

	if len(channel.pushedTasks) != 1 {
		t.Fatalf("expected re-push when merged ledger outgrew remote, got %d", len(channel.pushedTasks))
	}
	pushed := channel.pushedTasks[0]
	if pushed.Name != "New name" {
		t.Errorf("pushed task should carry winning content, got %q", pushed.Name)
	}
	if _, ok := pushed.Completions["2024-02-28"]; !ok {
		t.Error("pushed task should carry the local-only ledger day")
	}
}

func TestEditSessionDefersPush(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	id := uuid.New()
	local := models.JournalEntry{
		ID: id, Day: "2024-03-01", Text: "Draft",
		Tags:      []string{"work"},
		CreatedAt: testBase, UpdatedAt: testBase,
	}
	if err := store.AddEntry(local); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	o.BeginEdit(id)

	// Near-simultaneous remote edit forces a field merge, which normally
	// re-pushes.
	remote := local
	remote.Tags = []string{"urgent"}
	remote.UpdatedAt = testBase.Add(30 * time.Second)

	if err := o.OnRemoteEntry(remote); err != nil {
		t.Fatalf("OnRemoteEntry failed: %v", err)
	}

	// Merge is persisted immediately
	got, err := store.GetEntry(id)
	if err != nil {
		t.Fatalf("merged entry not persisted: %v", err)
	}
	if len(got.Tags) != 2 {
		t.Errorf("expected merged tags [urgent work], got %v", got.Tags)
	}

	// But nothing goes out until the session ends
	if len(channel.pushedEntries) != 0 {
		t.Fatalf("expected push to be deferred during edit session, got %d", len(channel.pushedEntries))
	}

	if err := o.EndEdit(id); err != nil {
		t.Fatalf("EndEdit failed: %v", err)
	}
	if len(channel.pushedEntries) != 1 {
		t.Fatalf("expected deferred push on EndEdit, got %d", len(channel.pushedEntries))
	}
	if len(channel.pushedEntries[0].Tags) != 2 {
		t.Errorf("deferred push should carry merged tags, got %v", channel.pushedEntries[0].Tags)
	}

	// EndEdit with nothing pending is a no-op
	if err := o.EndEdit(id); err != nil {
		t.Fatalf("second EndEdit failed: %v", err)
	}
	if len(channel.pushedEntries) != 1 {
		t.Errorf("expected no extra push, got %d", len(channel.pushedEntries))
	}
}

func TestAbandonEditDropsDeferredPush(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	id := uuid.New()
	local := models.JournalEntry{ID: id, Day: "2024-03-01", Text: "Draft", Tags: []string{"work"}, CreatedAt: testBase, UpdatedAt: testBase}
	if err := store.AddEntry(local); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	o.BeginEdit(id)

	remote := local
	remote.Tags = []string{"urgent"}
	remote.UpdatedAt = testBase.Add(30 * time.Second)
	if err := o.OnRemoteEntry(remote); err != nil {
		t.Fatalf("OnRemoteEntry failed: %v", err)
	}

	o.AbandonEdit(id)
	if err := o.EndEdit(id); err != nil {
		t.Fatalf("EndEdit failed: %v", err)
	}
	if len(channel.pushedEntries) != 0 {
		t.Errorf("abandoned session should not push, got %d", len(channel.pushedEntries))
	}
}

func TestToggleDoneGrantsPointsAndPushes(t *testing.T) {
	rewards := points.NewMemoryLedger()
	o, channel, store := setupOrchestrator(t, WithPoints(rewards))

	task := models.Task{ID: uuid.New(), Name: "Stretch", PointValue: 5, CreatedAt: testBase, UpdatedAt: testBase}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	toggled, err := o.ToggleDone(task.ID, "2024-03-01")
	if err != nil {
		t.Fatalf("ToggleDone failed: %v", err)
	}
	if !toggled.Completions["2024-03-01"].IsDone {
		t.Error("expected task to be marked done")
	}
	if rewards.Balance() != 5 {
		t.Errorf("expected balance 5 after completion, got %d", rewards.Balance())
	}
	if len(channel.pushedTasks) != 1 {
		t.Errorf("expected toggle to push, got %d", len(channel.pushedTasks))
	}

	// Toggling back revokes
	if _, err := o.ToggleDone(task.ID, "2024-03-01"); err != nil {
		t.Fatalf("second ToggleDone failed: %v", err)
	}
	if rewards.Balance() != 0 {
		t.Errorf("expected balance 0 after un-completion, got %d", rewards.Balance())
	}
}

func TestToggleSubitemPromotion(t *testing.T) {
	rewards := points.NewMemoryLedger()
	o, _, store := setupOrchestrator(t, WithPoints(rewards))

	subID := uuid.New()
	task := models.Task{
		ID:         uuid.New(),
		Name:       "Clean kitchen",
		PointValue: 3,
		Subitems:   []models.Subitem{{ID: subID, Name: "Counters"}},
		CreatedAt:  testBase,
		UpdatedAt:  testBase,
	}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	toggled, err := o.ToggleSubitem(task.ID, "2024-03-01", subID)
	if err != nil {
		t.Fatalf("ToggleSubitem failed: %v", err)
	}
	if !toggled.Completions["2024-03-01"].IsDone {
		t.Error("expected auto-promotion to mark the day done")
	}
	if rewards.Balance() != 3 {
		t.Errorf("expected promotion to grant points, got balance %d", rewards.Balance())
	}

	// Unknown subitem is an error
	if _, err := o.ToggleSubitem(task.ID, "2024-03-01", uuid.New()); err == nil {
		t.Error("expected error toggling unknown subitem")
	}
}

func TestToggleSubitemRespectsAutoPromoteSetting(t *testing.T) {
	o, _, store := setupOrchestrator(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	settings.AutoPromoteSubitems = false
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	subID := uuid.New()
	task := models.Task{
		ID:        uuid.New(),
		Name:      "Wash dishes",
		Subitems:  []models.Subitem{{ID: subID, Name: "Pots"}},
		CreatedAt: testBase,
		UpdatedAt: testBase,
	}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	toggled, err := o.ToggleSubitem(task.ID, "2024-03-01", subID)
	if err != nil {
		t.Fatalf("ToggleSubitem failed: %v", err)
	}
	if toggled.Completions["2024-03-01"].IsDone {
		t.Error("auto-promote disabled, day should not be marked done")
	}
}

func TestRecordEffortAndRatings(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	task := models.Task{ID: uuid.New(), Name: "Deep work", CreatedAt: testBase, UpdatedAt: testBase}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	updated, err := o.RecordEffort(task.ID, "2024-03-01", 50*time.Minute)
	if err != nil {
		t.Fatalf("RecordEffort failed: %v", err)
	}
	rec := updated.Completions["2024-03-01"]
	if rec.MeasuredEffort == nil || *rec.MeasuredEffort != 50*time.Minute {
		t.Errorf("expected measured effort recorded, got %v", rec.MeasuredEffort)
	}

	updated, err = o.RecordRatings(task.ID, "2024-03-01", 7, 9)
	if err != nil {
		t.Fatalf("RecordRatings failed: %v", err)
	}
	rec = updated.Completions["2024-03-01"]
	if rec.Ratings == nil || rec.Ratings.Difficulty != 7 || rec.Ratings.Quality != 9 {
		t.Errorf("expected ratings recorded, got %+v", rec.Ratings)
	}

	if _, err := o.RecordRatings(task.ID, "2024-03-01", 0, 11); err == nil {
		t.Error("expected error for out-of-range ratings")
	}

	if len(channel.pushedTasks) != 2 {
		t.Errorf("expected 2 pushes for the successful updates, got %d", len(channel.pushedTasks))
	}
}

func TestDeletePropagation(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	task := models.Task{ID: uuid.New(), Name: "Doomed", CreatedAt: testBase, UpdatedAt: testBase}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	entry := models.JournalEntry{ID: uuid.New(), Day: "2024-03-01", Text: "Doomed too", CreatedAt: testBase, UpdatedAt: testBase}
	if err := store.AddEntry(entry); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}

	if err := o.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := o.DeleteEntry(entry.ID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	if len(channel.deletedTasks) != 1 || channel.deletedTasks[0] != task.ID {
		t.Errorf("expected task delete signal, got %v", channel.deletedTasks)
	}
	if len(channel.deletedEntries) != 1 || channel.deletedEntries[0] != entry.ID {
		t.Errorf("expected entry delete signal, got %v", channel.deletedEntries)
	}

	// Deleted locally means hidden from reads
	if _, err := store.GetTask(task.ID); err == nil {
		t.Error("expected deleted task to be hidden")
	}
}

func TestSaveTaskStampsUpdatedAt(t *testing.T) {
	o, channel, store := setupOrchestrator(t)

	task := models.Task{ID: uuid.New(), Name: "Edit me", CreatedAt: testBase.Add(-time.Hour), UpdatedAt: testBase.Add(-time.Hour)}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	task.Name = "Edited"
	if err := o.SaveTask(task); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}

	got, err := store.GetTask(task.ID)
	if err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if got.Name != "Edited" {
		t.Errorf("expected edited name, got %q", got.Name)
	}
	if !got.UpdatedAt.Equal(testBase) {
		t.Errorf("expected updatedAt stamped to clock time, got %v", got.UpdatedAt)
	}
	if len(channel.pushedTasks) != 1 {
		t.Errorf("expected save to push, got %d", len(channel.pushedTasks))
	}
}
