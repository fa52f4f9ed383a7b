package store

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
)

// Role classifies a scanned barcode.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	RoleInvalid Role = "invalid"
)

// ClassifyBarcode reports whether a barcode belongs to a student, an admin,
// or neither. The student table is checked first. A storage failure is
// returned as an error, distinct from a merely unknown barcode.
func (s *Store) ClassifyBarcode(barcode string) (Role, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM student WHERE id=?`, barcode).Scan(&n); err != nil {
		return RoleInvalid, classify(err)
	}
	if n > 0 {
		return RoleStudent, nil
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM admin WHERE id=?`, barcode).Scan(&n); err != nil {
		return RoleInvalid, classify(err)
	}
	if n > 0 {
		return RoleAdmin, nil
	}
	return RoleInvalid, nil
}

// dummyPINHash is a well-formed bcrypt hash whose comparison result is
// discarded. Comparing against it keeps the unknown-barcode path as slow as
// a wrong-PIN rejection, so timing does not reveal which barcodes are admins.
const dummyPINHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// VerifyPIN checks a raw PIN against the stored hash for an admin barcode.
// The hash is one-way; verification never recovers the PIN.
func (s *Store) VerifyPIN(barcode, pin string) (bool, error) {
	var hash string
	err := s.db.QueryRow(`SELECT pin FROM admin WHERE id=?`, barcode).Scan(&hash)
	if err == sql.ErrNoRows {
		checkPIN(pin, dummyPINHash)
		return false, nil
	}
	if err != nil {
		return false, classify(err)
	}
	return checkPIN(pin, hash), nil
}

// ResetPIN replaces an admin's PIN after verifying the current one. The new
// PIN is hashed with a fresh random salt; a wrong old PIN leaves the stored
// hash untouched.
func (s *Store) ResetPIN(rowID int64, oldPIN, newPIN string) error {
	if newPIN == "" {
		return validationErr("PIN is required")
	}
	return s.withTx(func(tx *sql.Tx) error {
		var hash string
		if err := tx.QueryRow(`SELECT pin FROM admin WHERE rowid=?`, rowID).Scan(&hash); err != nil {
			return err
		}
		if !checkPIN(oldPIN, hash) {
			return validationErr("Incorrect PIN.")
		}
		newHash, err := hashPIN(newPIN)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE admin SET pin=? WHERE rowid=?`, newHash, rowID)
		return err
	})
}

func hashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPIN(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
