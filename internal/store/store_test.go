package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Create(filepath.Join(t.TempDir(), "timetrack.db"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func addStudent(t *testing.T, st *Store, barcode, first, last string) {
	t.Helper()
	err := st.Insert(TableStudent, Record{Barcode: barcode, FirstName: first, LastName: last})
	if err != nil {
		t.Fatalf("insert student %s: %v", barcode, err)
	}
}

func strPtr(s string) *string { return &s }

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, ErrMissingDatabase) {
		t.Fatalf("Open on missing file = %v, want ErrMissingDatabase", err)
	}
}

func TestOpenAfterCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timetrack.db")
	st, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatalf("Open after Create failed: %v", err)
	}
	defer st.Close()
	if err := st.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestCreateMakesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "timetrack.db")
	st, err := Create(path)
	if err != nil {
		t.Fatalf("Create with missing parent failed: %v", err)
	}
	st.Close()
}
