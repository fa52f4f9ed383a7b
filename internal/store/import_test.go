package store

import (
	"errors"
	"strings"
	"testing"
)

func TestImportCSVStudents(t *testing.T) {
	st := newTestStore(t)

	csv := strings.Join([]string{
		"1001,Ada,Lovelace",
		"1002,Alan,Turing",
		"short-row",
		"1001,Dup,Licate",
	}, "\n")

	count, total, err := st.ImportCSV(TableStudent, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (bad row and duplicate skipped)", count)
	}

	students, err := st.List(TableStudent, "")
	if err != nil {
		t.Fatalf("List student: %v", err)
	}
	if len(students) != 2 {
		t.Errorf("got %d students, want 2", len(students))
	}
}

func TestImportCSVActivity(t *testing.T) {
	st := newTestStore(t)
	addStudent(t, st, "1001", "Ada", "Lovelace")

	csv := strings.Join([]string{
		"1001,2024-01-01 09:00:00,2024-01-01 17:00:00",
		"1001,2024-01-02 09:00:00", // open session, no checkout
		"1001,not-a-timestamp",
	}, "\n")

	count, total, err := st.ImportCSV(TableActivity, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if count != 2 || total != 3 {
		t.Errorf("ImportCSV = (%d, %d), want (2, 3)", count, total)
	}

	status, err := st.Status("1001")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != StatusCheckedIn {
		t.Errorf("status = %q, want open session from import", status)
	}
}

func TestImportCSVAdminPINs(t *testing.T) {
	st := newTestStore(t)

	csv := "9999,Grace,Hopper,1234\n"
	count, total, err := st.ImportCSV(TableAdmin, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if count != 1 || total != 1 {
		t.Fatalf("ImportCSV = (%d, %d), want (1, 1)", count, total)
	}

	ok, err := st.VerifyPIN("9999", "1234")
	if err != nil {
		t.Fatalf("VerifyPIN: %v", err)
	}
	if !ok {
		t.Error("imported admin PIN does not verify")
	}
}

// brokenReader fails identically on every call, like a dropped connection.
type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("read: connection reset")
}

func TestImportCSVReaderFailure(t *testing.T) {
	st := newTestStore(t)

	count, total, err := st.ImportCSV(TableStudent, brokenReader{})
	if !IsKind(err, KindConnection) {
		t.Fatalf("ImportCSV with failing reader = %v, want connection error", err)
	}
	if count != 0 || total != 0 {
		t.Errorf("tally = (%d, %d), want (0, 0)", count, total)
	}
}

func TestImportCSVBadQuoting(t *testing.T) {
	st := newTestStore(t)

	csv := "1001,Ada,Lovelace\n\"unterminated,Grace,Hopper\n"
	count, total, err := st.ImportCSV(TableStudent, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if count != 1 || total != 2 {
		t.Errorf("ImportCSV = (%d, %d), want (1, 2) with the bad row skipped", count, total)
	}
}

func TestImportCSVEmptyInput(t *testing.T) {
	st := newTestStore(t)

	count, total, err := st.ImportCSV(TableStudent, strings.NewReader(""))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if count != 0 || total != 0 {
		t.Errorf("ImportCSV on empty input = (%d, %d), want (0, 0)", count, total)
	}
}
