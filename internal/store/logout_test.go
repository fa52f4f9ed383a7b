package store

import "testing"

func TestLogoutAll(t *testing.T) {
	st := newTestStore(t)
	for i, barcode := range []string{"1001", "1002", "1003"} {
		addStudent(t, st, barcode, "Student", string(rune('A'+i)))
		if err := st.CheckIn(barcode, "2024-01-01 09:00:00"); err != nil {
			t.Fatalf("CheckIn %s: %v", barcode, err)
		}
	}

	count, total, err := st.LogoutAll("2024-01-01 21:00:00")
	if err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	if count != 3 || total != 3 {
		t.Errorf("LogoutAll = (%d, %d), want (3, 3)", count, total)
	}

	list, err := st.CheckedInList()
	if err != nil {
		t.Fatalf("CheckedInList: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("%d students still checked in after sweep", len(list))
	}
}

func TestLogoutAllNothingOpen(t *testing.T) {
	st := newTestStore(t)

	count, total, err := st.LogoutAll("2024-01-01 21:00:00")
	if err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	if count != 0 || total != 0 {
		t.Errorf("LogoutAll on empty store = (%d, %d), want (0, 0)", count, total)
	}
}

func TestLogoutAllBadTimestamp(t *testing.T) {
	st := newTestStore(t)

	_, _, err := st.LogoutAll("yesterday")
	if !IsKind(err, KindValidation) {
		t.Fatalf("LogoutAll with bad timestamp = %v, want validation error", err)
	}
}

// A session closed between listing and sweeping counts as a failure for the
// tally without aborting the rest of the sweep.
func TestCloseSessionsStaleList(t *testing.T) {
	st := newTestStore(t)
	for i, barcode := range []string{"1001", "1002", "1003"} {
		addStudent(t, st, barcode, "Student", string(rune('A'+i)))
		if err := st.CheckIn(barcode, "2024-01-01 09:00:00"); err != nil {
			t.Fatalf("CheckIn %s: %v", barcode, err)
		}
	}

	ids, err := st.openSessionIDs()
	if err != nil {
		t.Fatalf("openSessionIDs: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d open sessions, want 3", len(ids))
	}

	// One student checks out on their own before the sweep runs.
	if _, err := st.CheckOut("1002", "2024-01-01 17:00:00"); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}

	count := st.closeSessions(ids, "2024-01-01 21:00:00")
	if count != 2 {
		t.Errorf("closeSessions with stale list = %d, want 2", count)
	}
}

func TestSweepMessage(t *testing.T) {
	if got := SweepMessage(3, 3); got != "SUCCESS: Logged out 3 / 3 accounts" {
		t.Errorf("SweepMessage(3, 3) = %q", got)
	}
	if got := SweepMessage(2, 3); got != "FAIL: Logged out 2 / 3 accounts" {
		t.Errorf("SweepMessage(2, 3) = %q", got)
	}
	if got := SweepMessage(0, 0); got != "SUCCESS: Logged out 0 / 0 accounts" {
		t.Errorf("SweepMessage(0, 0) = %q", got)
	}
}
