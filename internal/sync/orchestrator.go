// Package sync routes local mutations and inbound remote versions through the
// merge engine, persists the results, and decides when a record needs to go
// back out on the wire. It never talks to the network itself: transport is a
// Channel the caller provides.
package sync

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/ledger"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/merge"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/points"
	"github.com/julianstephens/cadence/internal/storage"
)

// Channel is the outbound side of the sync transport. Implementations own
// retry and backoff; the orchestrator fires and forgets.
type Channel interface {
	PushTask(models.Task) error
	PushEntry(models.JournalEntry) error
	DeleteTask(id uuid.UUID) error
	DeleteEntry(id uuid.UUID) error
}

type recordKind int

const (
	kindTask recordKind = iota
	kindEntry
)

// Orchestrator serializes all mutation and merge traffic for one device.
// All operations take the store lock, so a merge never observes a record
// mid-toggle.
type Orchestrator struct {
	mu      sync.Mutex
	store   storage.Provider
	channel Channel
	points  points.Ledger
	now     func() time.Time

	editing  map[uuid.UUID]bool
	deferred map[uuid.UUID]recordKind
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPoints attaches a reward ledger that receives grant/revoke effects from
// completion toggles.
func WithPoints(l points.Ledger) Option {
	return func(o *Orchestrator) { o.points = l }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(store storage.Provider, channel Channel, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		channel:  channel,
		now:      time.Now,
		editing:  make(map[uuid.UUID]bool),
		deferred: make(map[uuid.UUID]recordKind),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BeginEdit opens a live edit session on a record. While the session is open,
// inbound remote versions are still merged and persisted, but the merged
// result is held back from the channel so partial edits don't bounce between
// devices.
func (o *Orchestrator) BeginEdit(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.editing[id] = true
}

// EndEdit closes a live edit session and sends any re-push that was deferred
// while it was open.
func (o *Orchestrator) EndEdit(id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.editing, id)
	kind, ok := o.deferred[id]
	if !ok {
		return nil
	}
	delete(o.deferred, id)

	switch kind {
	case kindTask:
		task, err := o.store.GetTask(id)
		if err != nil {
			return fmt.Errorf("failed to load task for deferred push: %w", err)
		}
		return o.channel.PushTask(task)
	case kindEntry:
		entry, err := o.store.GetEntry(id)
		if err != nil {
			return fmt.Errorf("failed to load entry for deferred push: %w", err)
		}
		return o.channel.PushEntry(entry)
	}
	return nil
}

// AbandonEdit closes a live edit session without pushing. Any merge that
// happened during the session is already persisted; only the re-push is
// dropped.
func (o *Orchestrator) AbandonEdit(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.editing, id)
	delete(o.deferred, id)
}

// OnRemoteTask feeds an inbound remote task version through the merge engine.
// A record unknown locally is adopted as-is. When the merge outcome keeps
// local content the remote side has not seen, the merged record is re-pushed
// (or deferred if an edit session is open).
func (o *Orchestrator) OnRemoteTask(remote models.Task) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	local, err := o.store.GetTask(remote.ID)
	if err != nil {
		// Only a confirmed miss means "unknown locally". A transient store
		// failure must not let a stale remote copy replace local edits; the
		// transport retries the delivery.
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to load local task: %w", err)
		}
		if err := o.store.UpdateTask(remote); err != nil {
			return fmt.Errorf("failed to adopt remote task: %w", err)
		}
		return nil
	}

	merged, outcome, err := merge.Tasks(local, remote)
	if err != nil {
		return err
	}

	if err := o.store.UpdateTask(merged); err != nil {
		// The merged record lives on in memory on the other device; losing
		// this save loses nothing that a later merge can't reconstruct.
		logger.Error("Failed to persist merged task", "id", merged.ID, "error", err)
		return err
	}

	if !taskNeedsPush(outcome, merged, remote) {
		return nil
	}
	if o.editing[remote.ID] {
		o.deferred[remote.ID] = kindTask
		return nil
	}
	return o.channel.PushTask(merged)
}

// OnRemoteEntry is OnRemoteTask for journal entries.
func (o *Orchestrator) OnRemoteEntry(remote models.JournalEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	local, err := o.store.GetEntry(remote.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to load local entry: %w", err)
		}
		if err := o.store.UpdateEntry(remote); err != nil {
			return fmt.Errorf("failed to adopt remote entry: %w", err)
		}
		return nil
	}

	merged, outcome, err := merge.Entries(local, remote)
	if err != nil {
		return err
	}

	if err := o.store.UpdateEntry(merged); err != nil {
		logger.Error("Failed to persist merged entry", "id", merged.ID, "error", err)
		return err
	}

	if !entryNeedsPush(outcome, merged, remote) {
		return nil
	}
	if o.editing[remote.ID] {
		o.deferred[remote.ID] = kindEntry
		return nil
	}
	return o.channel.PushEntry(merged)
}

// taskNeedsPush reports whether the remote device is missing something the
// merged record has. A merge that reproduces the remote copy exactly must
// stay quiet: transports redeliver, and pushing an unchanged record back
// would bounce it between converged devices forever. Completion ledgers
// merge day-wise even under remote dominance, so a ledger that grew past
// the remote copy still goes out.
func taskNeedsPush(outcome merge.Outcome, merged, remote models.Task) bool {
	if outcome == merge.OutcomeLocalWon {
		return true
	}
	return !reflect.DeepEqual(merged, remote)
}

// entryNeedsPush is taskNeedsPush for journal entries.
func entryNeedsPush(outcome merge.Outcome, merged, remote models.JournalEntry) bool {
	if outcome == merge.OutcomeLocalWon {
		return true
	}
	return !reflect.DeepEqual(merged, remote)
}

// SaveTask persists a locally edited task, stamps updatedAt, and pushes it.
func (o *Orchestrator) SaveTask(task models.Task) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	task.Touch(o.now())
	if err := o.store.UpdateTask(task); err != nil {
		return err
	}
	return o.push(task)
}

// SaveEntry persists a locally edited journal entry, stamps updatedAt, and
// pushes it.
func (o *Orchestrator) SaveEntry(entry models.JournalEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry.Touch(o.now())
	if err := o.store.UpdateEntry(entry); err != nil {
		return err
	}
	if o.editing[entry.ID] {
		o.deferred[entry.ID] = kindEntry
		return nil
	}
	return o.channel.PushEntry(entry)
}

// ToggleDone flips a task's whole-day completion and applies the resulting
// point effects.
func (o *Orchestrator) ToggleDone(id uuid.UUID, day string) (models.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, err := o.store.GetTask(id)
	if err != nil {
		return models.Task{}, err
	}

	effects := ledger.ToggleDone(&task, day, o.now())

	if err := o.store.UpdateTask(task); err != nil {
		return models.Task{}, err
	}
	o.applyEffects(effects)
	return task, o.push(task)
}

// ToggleSubitem flips one subitem's completion for a day, auto-promoting or
// demoting the whole-day flag per policy.
func (o *Orchestrator) ToggleSubitem(id uuid.UUID, day string, subitemID uuid.UUID) (models.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, err := o.store.GetTask(id)
	if err != nil {
		return models.Task{}, err
	}

	effects, err := ledger.ToggleSubitem(&task, day, subitemID, o.now(), o.policyFromSettings())
	if err != nil {
		return models.Task{}, err
	}

	if err := o.store.UpdateTask(task); err != nil {
		return models.Task{}, err
	}
	o.applyEffects(effects)
	return task, o.push(task)
}

// RecordEffort stores measured focus time against a day's completion record.
func (o *Orchestrator) RecordEffort(id uuid.UUID, day string, effort time.Duration) (models.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, err := o.store.GetTask(id)
	if err != nil {
		return models.Task{}, err
	}

	ledger.RecordEffort(&task, day, effort, o.now())

	if err := o.store.UpdateTask(task); err != nil {
		return models.Task{}, err
	}
	return task, o.push(task)
}

// RecordRatings stores difficulty/quality scores against a day's completion
// record.
func (o *Orchestrator) RecordRatings(id uuid.UUID, day string, difficulty, quality int) (models.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, err := o.store.GetTask(id)
	if err != nil {
		return models.Task{}, err
	}

	if err := ledger.RecordRatings(&task, day, difficulty, quality, o.now()); err != nil {
		return models.Task{}, err
	}

	if err := o.store.UpdateTask(task); err != nil {
		return models.Task{}, err
	}
	return task, o.push(task)
}

// DeleteTask soft-deletes locally and propagates a delete signal. Deletions
// are not tombstoned in the merge protocol; the signal is its own message.
func (o *Orchestrator) DeleteTask(id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.DeleteTask(id); err != nil {
		return err
	}
	delete(o.editing, id)
	delete(o.deferred, id)
	return o.channel.DeleteTask(id)
}

// DeleteEntry soft-deletes locally and propagates a delete signal.
func (o *Orchestrator) DeleteEntry(id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.DeleteEntry(id); err != nil {
		return err
	}
	delete(o.editing, id)
	delete(o.deferred, id)
	return o.channel.DeleteEntry(id)
}

// push sends a task out unless a live edit session holds it back.
// Callers must hold the lock.
func (o *Orchestrator) push(task models.Task) error {
	if o.editing[task.ID] {
		o.deferred[task.ID] = kindTask
		return nil
	}
	return o.channel.PushTask(task)
}

// Status reports the orchestrator's in-flight state.
type Status struct {
	OpenSessions   int
	DeferredPushes int
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{
		OpenSessions:   len(o.editing),
		DeferredPushes: len(o.deferred),
	}
}

// policyFromSettings builds the completion policy from stored settings,
// falling back to the default when settings are unreadable. Callers must hold
// the lock.
func (o *Orchestrator) policyFromSettings() ledger.Policy {
	settings, err := o.store.GetSettings()
	if err != nil {
		return ledger.DefaultPolicy
	}
	return ledger.Policy{AutoPromote: settings.AutoPromoteSubitems}
}

// applyEffects forwards grant/revoke effects to the reward ledger, if one is
// attached. Callers must hold the lock.
func (o *Orchestrator) applyEffects(effects []ledger.Effect) {
	if o.points == nil {
		return
	}
	for _, e := range effects {
		switch e.Kind {
		case ledger.EffectGrantPoints:
			o.points.Grant(e.Points, e.Day)
		case ledger.EffectRevokePoints:
			o.points.Revoke(e.Points, e.Day)
		}
	}
}
