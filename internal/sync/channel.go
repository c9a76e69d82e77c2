package sync

import (
	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
)

// DiscardChannel is a Channel for local-only installs: every outbound message
// is dropped. Mutations still flow through the orchestrator so completion
// effects and edit sessions behave the same with or without a transport.
type DiscardChannel struct{}

func (DiscardChannel) PushTask(models.Task) error { return nil }

func (DiscardChannel) PushEntry(models.JournalEntry) error { return nil }

func (DiscardChannel) DeleteTask(uuid.UUID) error { return nil }

func (DiscardChannel) DeleteEntry(uuid.UUID) error { return nil }
