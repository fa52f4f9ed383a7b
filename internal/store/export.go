package store

import (
	"sort"
	"time"
)

// RosterEntry is one student in the export roster.
type RosterEntry struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Barcode   string `json:"barcode"`
}

// WeekHours is one student's summed hours for one payroll week.
type WeekHours struct {
	LastName  string  `json:"last_name"`
	FirstName string  `json:"first_name"`
	Barcode   string  `json:"barcode"`
	Year      int     `json:"year"`
	Week      int     `json:"week"`
	Hours     float64 `json:"hours"`
}

// SessionRow is one closed session in the raw activity dump.
type SessionRow struct {
	LastName  string  `json:"last_name"`
	FirstName string  `json:"first_name"`
	Barcode   string  `json:"barcode"`
	CheckIn   string  `json:"checkin"`
	CheckOut  string  `json:"checkout"`
	Hours     float64 `json:"hours"`
}

// ExportData is everything the export adapter needs; the adapter owns the
// spreadsheet layout and the store knows nothing about it.
type ExportData struct {
	Roster   []RosterEntry
	Weekly   []WeekHours
	Sessions []SessionRow
}

// Roster lists every student sorted by last name, first name, barcode.
func (s *Store) Roster() ([]RosterEntry, error) {
	rows, err := s.db.Query(
		`SELECT lastname, firstname, id FROM student
			ORDER BY lastname ASC, firstname ASC, id ASC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var roster []RosterEntry
	for rows.Next() {
		var r RosterEntry
		if err := rows.Scan(&r.LastName, &r.FirstName, &r.Barcode); err != nil {
			return nil, classify(err)
		}
		roster = append(roster, r)
	}
	return roster, classify(rows.Err())
}

// WeeklyHours buckets every closed session into its payroll week and sums
// hours per (student, year, week), sorted by last name, first name, then
// chronologically. Each session's hours are rounded before summing, and a
// session folded back across the year boundary merges into the previous
// year's final-week bucket instead of creating a duplicate.
func (s *Store) WeeklyHours() ([]WeekHours, error) {
	rows, err := s.db.Query(
		`SELECT student.lastname, student.firstname, student.id, activity.checkin,
			ROUND((JULIANDAY(activity.checkout) - JULIANDAY(activity.checkin)) * 24.0, 2)
			FROM student JOIN activity ON student.id=activity.id
			WHERE activity.checkout IS NOT NULL
			ORDER BY student.lastname ASC, student.firstname ASC, student.id ASC, activity.checkin ASC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	type bucketKey struct {
		barcode    string
		year, week int
	}
	index := make(map[bucketKey]int)
	var list []WeekHours
	for rows.Next() {
		var (
			last, first, barcode, checkin string
			hours                         float64
		)
		if err := rows.Scan(&last, &first, &barcode, &checkin, &hours); err != nil {
			return nil, classify(err)
		}
		t, err := time.ParseInLocation(TimeLayout, checkin, time.Local)
		if err != nil {
			return nil, validationErr("malformed checkin in activity table: " + checkin)
		}
		year, week := WeekBucket(t)
		key := bucketKey{barcode, year, week}
		if i, ok := index[key]; ok {
			list[i].Hours = round2(list[i].Hours + hours)
			continue
		}
		index[key] = len(list)
		list = append(list, WeekHours{
			LastName: last, FirstName: first, Barcode: barcode,
			Year: year, Week: week, Hours: hours,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.LastName != b.LastName:
			return a.LastName < b.LastName
		case a.FirstName != b.FirstName:
			return a.FirstName < b.FirstName
		case a.Barcode != b.Barcode:
			return a.Barcode < b.Barcode
		case a.Year != b.Year:
			return a.Year < b.Year
		}
		return a.Week < b.Week
	})
	return list, nil
}

// ActivityDump lists every closed session chronologically by check-in.
func (s *Store) ActivityDump() ([]SessionRow, error) {
	rows, err := s.db.Query(
		`SELECT student.lastname, student.firstname, student.id, activity.checkin, activity.checkout,
			ROUND((JULIANDAY(activity.checkout) - JULIANDAY(activity.checkin)) * 24.0, 2) hours
			FROM student JOIN activity ON student.id=activity.id
			WHERE activity.checkout IS NOT NULL
			ORDER BY activity.checkin ASC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var dump []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.LastName, &r.FirstName, &r.Barcode, &r.CheckIn, &r.CheckOut, &r.Hours); err != nil {
			return nil, classify(err)
		}
		dump = append(dump, r)
	}
	return dump, classify(rows.Err())
}

// ExportSnapshot gathers the three export lists in one call.
func (s *Store) ExportSnapshot() (ExportData, error) {
	roster, err := s.Roster()
	if err != nil {
		return ExportData{}, err
	}
	weekly, err := s.WeeklyHours()
	if err != nil {
		return ExportData{}, err
	}
	sessions, err := s.ActivityDump()
	if err != nil {
		return ExportData{}, err
	}
	return ExportData{Roster: roster, Weekly: weekly, Sessions: sessions}, nil
}
