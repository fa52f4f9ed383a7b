package store

import (
	"database/sql"
	"errors"
)

// Seed admin created the first time the schema is provisioned, so the
// at-least-one-admin invariant is satisfiable from the start.
const (
	seedAdminBarcode   = "4237"
	seedAdminFirstName = "Sir"
	seedAdminLastName  = "Lance-A-Bot"
	seedAdminPIN       = "4237"
)

// dateTimeGlob validates the persisted timestamp format at the storage layer.
const dateTimeGlob = `[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9] [0-9][0-9]:[0-9][0-9]:[0-9][0-9]`

type schemaObject struct {
	kind string // table, index, or trigger per sqlite_master
	name string
	ddl  string
}

// The non-integer primary keys are also NOT NULL because sqlite allows a
// NULL in a TEXT primary key column.
var schemaObjects = []schemaObject{
	{"table", "student", `
		CREATE TABLE IF NOT EXISTS student (
			id        TEXT PRIMARY KEY NOT NULL,
			firstname TEXT NOT NULL,
			lastname  TEXT NOT NULL
		)`},
	{"table", "activity", `
		CREATE TABLE IF NOT EXISTS activity (
			id       TEXT NOT NULL,
			checkin  TEXT NOT NULL CHECK(checkin GLOB "` + dateTimeGlob + `"),
			checkout TEXT CHECK(checkout GLOB "` + dateTimeGlob + `"),
			FOREIGN KEY (id) REFERENCES student(id) ON DELETE CASCADE ON UPDATE CASCADE
		)`},
	{"table", "admin", `
		CREATE TABLE IF NOT EXISTS admin (
			id        TEXT PRIMARY KEY NOT NULL,
			firstname TEXT NOT NULL,
			lastname  TEXT NOT NULL,
			pin       TEXT NOT NULL
		)`},
	{"index", "activity_id", `CREATE INDEX IF NOT EXISTS activity_id ON activity(id)`},

	// A barcode may exist in student or admin, never both.
	{"trigger", "insert_student", `
		CREATE TRIGGER IF NOT EXISTS insert_student BEFORE INSERT ON student
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM admin WHERE NEW.id=id) >0
					THEN RAISE(ABORT, "Barcode already exists in the Admin Table. Use a different Barcode.")
			END;
		END`},
	{"trigger", "update_student", `
		CREATE TRIGGER IF NOT EXISTS update_student BEFORE UPDATE OF id ON student
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM admin WHERE NEW.id=id) >0
					THEN RAISE(ABORT, "Barcode already exists in the Admin Table. Use a different Barcode.")
			END;
		END`},

	// At most one open session (NULL checkout) per barcode, enforced on both
	// insert and update so the guarantee holds even for admin edits.
	{"trigger", "insert_activity", `
		CREATE TRIGGER IF NOT EXISTS insert_activity BEFORE INSERT ON activity
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM activity WHERE NEW.id=id AND NEW.checkout IS NULL AND checkout IS NULL) >0
					THEN RAISE(ABORT, "Student already Checked In. Must include a Check Out time.")
			END;
		END`},
	{"trigger", "update_activity", `
		CREATE TRIGGER IF NOT EXISTS update_activity BEFORE UPDATE ON activity
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM activity
					WHERE NEW.rowid!=rowid AND NEW.id=id AND NEW.checkout IS NULL AND checkout IS NULL) >0
					THEN RAISE(ABORT, "Student already Checked In. Must include a Check Out time.")
			END;
		END`},

	{"trigger", "insert_admin", `
		CREATE TRIGGER IF NOT EXISTS insert_admin BEFORE INSERT ON admin
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM student WHERE NEW.id=id) >0
					THEN RAISE(ABORT, "Barcode already exists in the Student Table. Use a different Barcode.")
			END;
		END`},
	{"trigger", "update_admin", `
		CREATE TRIGGER IF NOT EXISTS update_admin BEFORE UPDATE OF id ON admin
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM student WHERE NEW.id=id) >0
					THEN RAISE(ABORT, "Barcode already exists in the Student Table. Use a different Barcode.")
			END;
		END`},

	// The admin table must never become empty.
	{"trigger", "delete_admin", `
		CREATE TRIGGER IF NOT EXISTS delete_admin BEFORE DELETE ON admin
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM admin) =1
					THEN RAISE(ABORT, "There must be at least one admin in the Admin Table.")
			END;
		END`},
}

// EnsureSchema checks for every table, index, and trigger and creates any
// that are missing. Safe to call on every startup. It reports how many
// objects were created out of the known total.
func (s *Store) EnsureSchema() (created, total int, err error) {
	total = len(schemaObjects)
	err = s.withTx(func(tx *sql.Tx) error {
		for _, obj := range schemaObjects {
			var name string
			scanErr := tx.QueryRow(
				`SELECT name FROM sqlite_master WHERE type=? AND name=?`,
				obj.kind, obj.name,
			).Scan(&name)
			switch {
			case scanErr == nil:
				continue
			case errors.Is(scanErr, sql.ErrNoRows):
				if _, execErr := tx.Exec(obj.ddl); execErr != nil {
					return execErr
				}
				created++
			default:
				return scanErr
			}
		}

		var admins int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM admin`).Scan(&admins); err != nil {
			return err
		}
		if admins == 0 {
			hash, err := hashPIN(seedAdminPIN)
			if err != nil {
				return err
			}
			_, err = tx.Exec(
				`INSERT INTO admin (id, firstname, lastname, pin) VALUES (?, ?, ?, ?)`,
				seedAdminBarcode, seedAdminFirstName, seedAdminLastName, hash,
			)
			return err
		}
		return nil
	})
	if err != nil {
		return created, total, err
	}
	return created, total, nil
}
