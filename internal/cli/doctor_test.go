package cli

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/cadence/internal/storage"
)

func setupTestDoctorStore(t *testing.T) (*Context, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cadence.json")

	store := storage.NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &Context{Store: store}
	cleanup := func() {
		store.Close()
	}
	return ctx, cleanup
}

func TestDoctorCmd_HealthyStore(t *testing.T) {
	ctx, cleanup := setupTestDoctorStore(t)
	defer cleanup()

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor failed on a healthy store: %v", err)
	}
}

func TestDoctorCmd_MissingBackupsIsWarning(t *testing.T) {
	ctx, cleanup := setupTestDoctorStore(t)
	defer cleanup()

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor should not fail on missing backups: %v", err)
	}
}

func TestDoctorCmd_UninitializedStore(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "cadence.json"))
	ctx := &Context{Store: store}

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err == nil {
		t.Error("doctor should fail when storage was never initialized")
	}
}
