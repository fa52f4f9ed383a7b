package store

import (
	"encoding/csv"
	"errors"
	"io"
)

// ImportCSV inserts one record per CSV row. Row shapes:
//
//	student:  barcode,firstname,lastname
//	activity: barcode,checkin[,checkout]
//	admin:    barcode,firstname,lastname,pin
//
// Every row is attempted independently; a rejected row (bad shape, bad
// quoting, duplicate barcode, constraint violation) does not abort the rest.
// Returns how many of the total rows were inserted. A failure of the reader
// itself, as opposed to a row, aborts the import with the tally so far.
func (s *Store) ImportCSV(table Table, r io.Reader) (count, total int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is one failed attempt; a broken reader
			// would return the same error forever, so stop there.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				total++
				continue
			}
			return count, total, connectionErr("cannot read import data", err)
		}
		total++
		rec, ok := recordFromRow(table, row)
		if !ok {
			continue
		}
		if err := s.Insert(table, rec); err != nil {
			continue
		}
		count++
	}
	return count, total, nil
}

func recordFromRow(table Table, row []string) (Record, bool) {
	switch table {
	case TableStudent:
		if len(row) < 3 {
			return Record{}, false
		}
		return Record{Barcode: row[0], FirstName: row[1], LastName: row[2]}, true
	case TableActivity:
		if len(row) < 2 {
			return Record{}, false
		}
		rec := Record{Barcode: row[0], CheckIn: row[1]}
		if len(row) > 2 && row[2] != "" {
			out := row[2]
			rec.CheckOut = &out
		}
		return rec, true
	case TableAdmin:
		if len(row) < 4 {
			return Record{}, false
		}
		return Record{Barcode: row[0], FirstName: row[1], LastName: row[2], PIN: row[3]}, true
	}
	return Record{}, false
}
