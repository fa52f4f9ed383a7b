package store

import "database/sql"

// Table enumerates the three entity tables. CRUD behavior dispatches on this
// closed set; anything else is rejected at the boundary.
type Table int

const (
	TableStudent Table = iota
	TableActivity
	TableAdmin
)

func (t Table) String() string {
	switch t {
	case TableStudent:
		return "student"
	case TableActivity:
		return "activity"
	case TableAdmin:
		return "admin"
	}
	return "unknown"
}

// ParseTable maps a table name onto the closed enumeration.
func ParseTable(name string) (Table, error) {
	switch name {
	case "student":
		return TableStudent, nil
	case "activity":
		return TableActivity, nil
	case "admin":
		return TableAdmin, nil
	}
	return 0, validationErr("Invalid table")
}

// Record is one row of any entity table, with named fields instead of the
// positional tuples the UI used to juggle. RowID is the store-assigned row
// identifier used only for selection and editing; relational integrity runs
// on Barcode. PIN is write-only: populated on admin inserts, never on reads.
type Record struct {
	RowID     int64   `json:"rowid"`
	Barcode   string  `json:"barcode"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	PIN       string  `json:"-"`
	CheckIn   string  `json:"checkin,omitempty"`
	CheckOut  *string `json:"checkout,omitempty"`
}

// List returns all rows of a table in its deterministic order: student and
// admin by barcode ascending, activity by check-in descending. For activity,
// a non-empty barcode narrows the listing to one student.
func (s *Store) List(table Table, barcode string) ([]Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch table {
	case TableStudent:
		rows, err = s.db.Query(`SELECT rowid, id, firstname, lastname FROM student ORDER BY id ASC`)
	case TableAdmin:
		rows, err = s.db.Query(`SELECT rowid, id, firstname, lastname FROM admin ORDER BY id ASC`)
	case TableActivity:
		if barcode != "" {
			rows, err = s.db.Query(
				`SELECT rowid, id, checkin, checkout FROM activity WHERE id=? ORDER BY checkin DESC`, barcode)
		} else {
			rows, err = s.db.Query(`SELECT rowid, id, checkin, checkout FROM activity ORDER BY checkin DESC`)
		}
	default:
		return nil, validationErr("Invalid table")
	}
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if table == TableActivity {
			err = rows.Scan(&rec.RowID, &rec.Barcode, &rec.CheckIn, &rec.CheckOut)
		} else {
			err = rows.Scan(&rec.RowID, &rec.Barcode, &rec.FirstName, &rec.LastName)
		}
		if err != nil {
			return nil, classify(err)
		}
		records = append(records, rec)
	}
	return records, classify(rows.Err())
}

// Get returns a single row by its row identifier.
func (s *Store) Get(table Table, rowID int64) (Record, error) {
	rec := Record{RowID: rowID}
	var err error
	switch table {
	case TableStudent:
		err = s.db.QueryRow(`SELECT id, firstname, lastname FROM student WHERE rowid=?`, rowID).
			Scan(&rec.Barcode, &rec.FirstName, &rec.LastName)
	case TableAdmin:
		err = s.db.QueryRow(`SELECT id, firstname, lastname FROM admin WHERE rowid=?`, rowID).
			Scan(&rec.Barcode, &rec.FirstName, &rec.LastName)
	case TableActivity:
		err = s.db.QueryRow(`SELECT id, checkin, checkout FROM activity WHERE rowid=?`, rowID).
			Scan(&rec.Barcode, &rec.CheckIn, &rec.CheckOut)
	default:
		return Record{}, validationErr("Invalid table")
	}
	if err != nil {
		return Record{}, classify(err)
	}
	return rec, nil
}

// Insert adds a new row. Admin PINs are hashed with a fresh random salt
// before storage and are never persisted or logged in plaintext.
func (s *Store) Insert(table Table, rec Record) error {
	if err := validateRecord(table, rec, true); err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		var err error
		switch table {
		case TableStudent:
			_, err = tx.Exec(`INSERT INTO student (id, firstname, lastname) VALUES (?, ?, ?)`,
				rec.Barcode, rec.FirstName, rec.LastName)
		case TableActivity:
			_, err = tx.Exec(`INSERT INTO activity (id, checkin, checkout) VALUES (?, ?, ?)`,
				rec.Barcode, rec.CheckIn, rec.CheckOut)
		case TableAdmin:
			var hash string
			hash, err = hashPIN(rec.PIN)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`INSERT INTO admin (id, firstname, lastname, pin) VALUES (?, ?, ?, ?)`,
				rec.Barcode, rec.FirstName, rec.LastName, hash)
		}
		return err
	})
}

// Update replaces a row's fields by row identifier. Admin PINs are not
// touched here; ResetPIN owns that path.
func (s *Store) Update(table Table, rowID int64, rec Record) error {
	if err := validateRecord(table, rec, false); err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		var (
			res sql.Result
			err error
		)
		switch table {
		case TableStudent:
			res, err = tx.Exec(`UPDATE student SET id=?, firstname=?, lastname=? WHERE rowid=?`,
				rec.Barcode, rec.FirstName, rec.LastName, rowID)
		case TableActivity:
			res, err = tx.Exec(`UPDATE activity SET id=?, checkin=?, checkout=? WHERE rowid=?`,
				rec.Barcode, rec.CheckIn, rec.CheckOut, rowID)
		case TableAdmin:
			res, err = tx.Exec(`UPDATE admin SET id=?, firstname=?, lastname=? WHERE rowid=?`,
				rec.Barcode, rec.FirstName, rec.LastName, rowID)
		}
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

// Delete removes a row by row identifier, subject to the cascade and
// at-least-one-admin rules.
func (s *Store) Delete(table Table, rowID int64) error {
	if table != TableStudent && table != TableActivity && table != TableAdmin {
		return validationErr("Invalid table")
	}
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM `+table.String()+` WHERE rowid=?`, rowID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundErr("record not found")
	}
	return nil
}

// validateRecord checks a row before a write. requirePIN is set on admin
// inserts only; updates never carry a PIN because ResetPIN owns that path.
func validateRecord(table Table, rec Record, requirePIN bool) error {
	if rec.Barcode == "" {
		return validationErr("barcode is required")
	}
	switch table {
	case TableStudent:
		if rec.FirstName == "" || rec.LastName == "" {
			return validationErr("first name and last name are required")
		}
	case TableAdmin:
		if rec.FirstName == "" || rec.LastName == "" {
			return validationErr("first name and last name are required")
		}
		if requirePIN && rec.PIN == "" {
			return validationErr("PIN is required")
		}
	case TableActivity:
		if err := validTimestamp(rec.CheckIn); err != nil {
			return err
		}
		if rec.CheckOut != nil {
			if err := validTimestamp(*rec.CheckOut); err != nil {
				return err
			}
		}
	default:
		return validationErr("Invalid table")
	}
	return nil
}
