package storage

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "snapshots.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_OpenCreatesSchema(t *testing.T) {
	t.Parallel()

	s := openTestDB(t)
	if err := s.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	version, err := s.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("Expected schema version %d after open, got %d", SchemaVersion, version)
	}
}

func TestSQLite_OpenRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Error("Open must reject an empty path")
	}
}

func TestSQLite_SaveAndLoad(t *testing.T) {
	t.Parallel()

	s := openTestDB(t)

	doc := []byte(`[{"id":"00000000-0000-0000-0000-000000000001","title":"persisted"}]`)
	if err := s.Save("todos", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load("todos")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("Round trip mismatch: %s", got)
	}

	// a second save replaces, not appends
	updated := []byte(`[]`)
	if err := s.Save("todos", updated); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	got, err = s.Load("todos")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("Expected replaced snapshot, got %s", got)
	}
}

func TestSQLite_LoadUnknownCollection(t *testing.T) {
	t.Parallel()

	s := openTestDB(t)
	got, err := s.Load("never-saved")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for an unsaved collection, got %s", got)
	}
}

func TestSQLite_CollectionsAreIndependent(t *testing.T) {
	t.Parallel()

	s := openTestDB(t)
	if err := s.Save("todos", []byte(`["t"]`)); err != nil {
		t.Fatalf("Save todos failed: %v", err)
	}
	if err := s.Save("folders", []byte(`["f"]`)); err != nil {
		t.Fatalf("Save folders failed: %v", err)
	}

	todos, _ := s.Load("todos")
	folders, _ := s.Load("folders")
	if string(todos) != `["t"]` || string(folders) != `["f"]` {
		t.Errorf("Snapshots must not interfere: todos=%s folders=%s", todos, folders)
	}
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "persist.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Save("todos", []byte(`["kept"]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Load("todos")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != `["kept"]` {
		t.Errorf("Data lost across reopen: %s", got)
	}
}
