package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"
)

// Status values for a student barcode. A student is Checked In exactly when
// an activity row with a NULL checkout exists for that barcode.
const (
	StatusCheckedIn  = "Checked In"
	StatusCheckedOut = "Checked Out"
)

// StudentData bundles what the kiosk shows after a scan.
type StudentData struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Status     string  `json:"status"`
	TotalHours float64 `json:"total_hours"`
}

// DayHours is one row of the per-day hours table.
type DayHours struct {
	Day   string  `json:"day"` // 3-letter day of week
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// CheckedIn identifies a student with an open session.
type CheckedIn struct {
	Barcode   string `json:"barcode"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CheckIn opens a session for the barcode at the given time. The
// insert_activity trigger rejects a second open session atomically with the
// write, so a double scan cannot race past the check.
func (s *Store) CheckIn(barcode, checkin string) error {
	if checkin == "" {
		checkin = Now()
	}
	if err := validTimestamp(checkin); err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO activity (id, checkin, checkout) VALUES (?, ?, NULL)`,
			barcode, checkin)
		return err
	})
}

// CheckOut closes the barcode's open session at the given time and returns
// the student's total closed hours. It fails with a not-found error when no
// open session exists.
func (s *Store) CheckOut(barcode, checkout string) (float64, error) {
	if checkout == "" {
		checkout = Now()
	}
	if err := validTimestamp(checkout); err != nil {
		return 0, err
	}
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE activity SET checkout=? WHERE id=? AND checkout IS NULL`,
			checkout, barcode)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return notFoundErr("Student is not Checked In.")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return s.TotalHours(barcode)
}

// Status reports whether the barcode currently has an open session. An
// unknown barcode is simply Checked Out; absence is a valid query outcome.
func (s *Store) Status(barcode string) (string, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM activity WHERE id=? AND checkout IS NULL`, barcode).Scan(&n)
	if err != nil {
		return "", classify(err)
	}
	if n > 0 {
		return StatusCheckedIn, nil
	}
	return StatusCheckedOut, nil
}

// TotalHours sums the hours of every closed session for the barcode,
// rounded to 2 decimal places. Zero if there are no closed sessions.
func (s *Store) TotalHours(barcode string) (float64, error) {
	var total sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT SUM(JULIANDAY(checkout) - JULIANDAY(checkin)) * 24.0
			FROM activity WHERE id=? AND checkout IS NOT NULL`, barcode).Scan(&total)
	if err != nil {
		return 0, classify(err)
	}
	if !total.Valid {
		return 0, nil
	}
	return round2(total.Float64), nil
}

// StudentData returns name, status, and total hours in one call for the
// kiosk scan screen.
func (s *Store) StudentData(barcode string) (StudentData, error) {
	var data StudentData
	err := s.db.QueryRow(`SELECT firstname, lastname FROM student WHERE id=?`, barcode).
		Scan(&data.FirstName, &data.LastName)
	if err != nil && err != sql.ErrNoRows {
		return StudentData{}, classify(err)
	}
	if data.Status, err = s.Status(barcode); err != nil {
		return StudentData{}, err
	}
	if data.TotalHours, err = s.TotalHours(barcode); err != nil {
		return StudentData{}, err
	}
	return data, nil
}

// DailyHours returns one row per calendar date with that date's hours, most
// recent first, including the open session's elapsed hours as of now. The
// open session merges into the row for its date when one exists.
func (s *Store) DailyHours(barcode string, now time.Time) ([]DayHours, float64, error) {
	var openDate sql.NullString
	var openHours sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT DATE(checkin), ROUND(SUM(JULIANDAY(?) - JULIANDAY(checkin)) * 24.0, 2)
			FROM activity WHERE id=? AND checkout IS NULL`,
		now.Format(TimeLayout), barcode).Scan(&openDate, &openHours)
	if err != nil {
		return nil, 0, classify(err)
	}

	rows, err := s.db.Query(
		`SELECT DATE(checkin), ROUND(SUM(JULIANDAY(checkout) - JULIANDAY(checkin)) * 24.0, 2)
			FROM activity WHERE id=? AND checkout IS NOT NULL
			GROUP BY DATE(checkin) ORDER BY DATE(checkin) DESC`, barcode)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	type dayRow struct {
		date  string
		hours float64
	}
	var days []dayRow
	for rows.Next() {
		var d dayRow
		if err := rows.Scan(&d.date, &d.hours); err != nil {
			return nil, 0, classify(err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}

	if openDate.Valid {
		merged := false
		for i := range days {
			if days[i].date == openDate.String {
				days[i].hours = round2(days[i].hours + openHours.Float64)
				merged = true
				break
			}
		}
		if !merged {
			days = append([]dayRow{{openDate.String, openHours.Float64}}, days...)
		}
	}

	var table []DayHours
	var total float64
	for _, d := range days {
		t, err := time.ParseInLocation(DateLayout, d.date, time.Local)
		if err != nil {
			return nil, 0, validationErr("malformed date in activity table: " + d.date)
		}
		table = append(table, DayHours{Day: t.Format("Mon"), Date: d.date, Hours: d.hours})
		total = round2(total + d.hours)
	}
	return table, total, nil
}

// CheckedInList returns every student with an open session, ordered by last
// name then first name.
func (s *Store) CheckedInList() ([]CheckedIn, error) {
	rows, err := s.db.Query(
		`SELECT student.id, student.firstname, student.lastname
			FROM student JOIN activity ON student.id=activity.id
			WHERE activity.checkout IS NULL
			ORDER BY student.lastname ASC, student.firstname ASC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var list []CheckedIn
	for rows.Next() {
		var c CheckedIn
		if err := rows.Scan(&c.Barcode, &c.FirstName, &c.LastName); err != nil {
			return nil, classify(err)
		}
		list = append(list, c)
	}
	return list, classify(rows.Err())
}

// LogoutAll force-closes every open session at the given time. Each row is
// attempted independently; it reports how many of the open sessions were
// closed so partial success is visible to the caller.
func (s *Store) LogoutAll(checkout string) (count, total int, err error) {
	if checkout == "" {
		checkout = Now()
	}
	if err := validTimestamp(checkout); err != nil {
		return 0, 0, err
	}
	ids, err := s.openSessionIDs()
	if err != nil {
		return 0, 0, err
	}
	return s.closeSessions(ids, checkout), len(ids), nil
}

func (s *Store) openSessionIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT rowid FROM activity WHERE checkout IS NULL`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, classify(err)
		}
		ids = append(ids, id)
	}
	return ids, classify(rows.Err())
}

// closeSessions closes each row that is still open. A row edited or removed
// since it was listed counts as a failure, not a crash.
func (s *Store) closeSessions(ids []int64, checkout string) int {
	count := 0
	for _, id := range ids {
		res, err := s.db.Exec(
			`UPDATE activity SET checkout=? WHERE rowid=? AND checkout IS NULL`, checkout, id)
		if err != nil {
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			count++
		}
	}
	return count
}

// SweepMessage formats the bulk-logout tally the way the sweep reports it.
func SweepMessage(count, total int) string {
	msg := fmt.Sprintf("Logged out %d / %d accounts", count, total)
	if count < total {
		return "FAIL: " + msg
	}
	return "SUCCESS: " + msg
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
