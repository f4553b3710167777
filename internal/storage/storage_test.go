package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
)

func TestAlertStorageBoundsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "alerts.json")
	store, err := NewAlertStorage(path, 3, eventlog.New(&eventlog.Recorder{}, 1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		store.Notify(models.NewAlert("failed", 1411, models.SeverityError, fmt.Sprintf("alert %d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	history := store.History()
	if len(history) != 3 || history[0].Message != "alert 2" {
		t.Fatalf("expected bounded history, got %+v", history)
	}
	recent := store.Recent(2)
	if len(recent) != 2 || recent[0].Message != "alert 4" || recent[1].Message != "alert 3" {
		t.Fatalf("expected newest first, got %+v", recent)
	}

	reloaded, err := NewAlertStorage(path, 3, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.History(); len(got) != 3 || got[2].Message != "alert 4" {
		t.Fatalf("expected persisted history, got %+v", got)
	}
}

func TestFieldStoreDefaultsAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.json")
	store, err := NewFieldStore(path, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	fields := store.Fields()
	if fields.Ints[models.FieldUserFileAgeMinutes] != models.DefaultUserFileAge {
		t.Fatalf("expected default users file age, got %+v", fields.Ints)
	}
	if !store.UpdatedAt().IsZero() {
		t.Fatalf("expected no update yet")
	}

	store.SetInt(models.FieldFailedBacklog, 4)
	store.SetString(models.FieldPrintServiceStatus, "Running")

	reloaded, err := NewFieldStore(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	fields = reloaded.Fields()
	if fields.Ints[models.FieldFailedBacklog] != 4 || fields.Strings[models.FieldPrintServiceStatus] != "Running" {
		t.Fatalf("expected persisted values, got %+v", fields)
	}
	if fields.Ints[models.FieldUserFileAgeMinutes] != models.DefaultUserFileAge {
		t.Fatalf("expected untouched default to survive, got %+v", fields.Ints)
	}
	if reloaded.UpdatedAt().IsZero() {
		t.Fatalf("expected update time to be persisted")
	}
}
