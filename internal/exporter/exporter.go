// Package exporter turns the store's export snapshot into an xlsx workbook.
// It owns the spreadsheet layout; the store hands it plain lists and knows
// nothing about sheets or formatting.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonwoodard/timetrack4237/internal/store"
)

const (
	weeklySheet = "Weekly Hours"
	rawSheet    = "Raw Data"

	nameHeaderColor = "D9D2E9"
	weekHeaderColor = "C9DAF8"
)

// Write renders the snapshot into a workbook at path: one sheet with the
// per-student weekly-hours grid and one with the raw closed-session dump.
func Write(path string, data store.ExportData) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), weeklySheet)
	if _, err := f.NewSheet(rawSheet); err != nil {
		return fmt.Errorf("create raw data sheet: %w", err)
	}

	if err := writeWeekly(f, data); err != nil {
		return fmt.Errorf("weekly sheet: %w", err)
	}
	if err := writeRaw(f, data.Sessions); err != nil {
		return fmt.Errorf("raw data sheet: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// timeline returns the Sunday of every week between the earliest and latest
// bucket in the weekly list, inclusive, so students with gap weeks still
// line up column for column.
func timeline(weekly []store.WeekHours) []time.Time {
	if len(weekly) == 0 {
		return nil
	}
	first := store.WeekStart(weekly[0].Year, weekly[0].Week)
	last := first
	for _, w := range weekly[1:] {
		sunday := store.WeekStart(w.Year, w.Week)
		if sunday.Before(first) {
			first = sunday
		}
		if sunday.After(last) {
			last = sunday
		}
	}

	var sundays []time.Time
	for cur := first; !cur.After(last); cur = cur.AddDate(0, 0, 7) {
		sundays = append(sundays, cur)
	}
	return sundays
}

func writeWeekly(f *excelize.File, data store.ExportData) error {
	sundays := timeline(data.Weekly)

	header := []interface{}{"Last Name", "First Name", "Barcode", "Hours"}
	for _, sunday := range sundays {
		header = append(header, sunday.Format("01/02/2006"))
	}
	if err := f.SetSheetRow(weeklySheet, "A1", &header); err != nil {
		return err
	}

	type bucket struct{ year, week int }
	hoursByStudent := make(map[string]map[bucket]float64)
	totals := make(map[string]float64)
	for _, w := range data.Weekly {
		cells := hoursByStudent[w.Barcode]
		if cells == nil {
			cells = make(map[bucket]float64)
			hoursByStudent[w.Barcode] = cells
		}
		cells[bucket{w.Year, w.Week}] = w.Hours
		totals[w.Barcode] += w.Hours
	}

	for i, st := range data.Roster {
		row := []interface{}{st.LastName, st.FirstName, st.Barcode, totals[st.Barcode]}
		for _, sunday := range sundays {
			year, week := store.WeekBucket(sunday)
			if h, ok := hoursByStudent[st.Barcode][bucket{year, week}]; ok {
				row = append(row, h)
			} else {
				row = append(row, "")
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(weeklySheet, cell, &row); err != nil {
			return err
		}
	}

	return styleWeekly(f, len(data.Roster)+1, len(header))
}

func styleWeekly(f *excelize.File, numRows, numCols int) error {
	nameHeader, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{nameHeaderColor}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(weeklySheet, "A1", "D1", nameHeader); err != nil {
		return err
	}

	hoursFmt := "0.00"
	hoursStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &hoursFmt})
	if err != nil {
		return err
	}
	if numRows > 1 {
		end, _ := excelize.CoordinatesToCellName(4, numRows)
		if err := f.SetCellStyle(weeklySheet, "D2", end, hoursStyle); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(weeklySheet, "A", "D", 14); err != nil {
		return err
	}

	if numCols > 4 {
		weekHeader, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{weekHeaderColor}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return err
		}
		start, _ := excelize.CoordinatesToCellName(5, 1)
		end, _ := excelize.CoordinatesToCellName(numCols, 1)
		if err := f.SetCellStyle(weeklySheet, start, end, weekHeader); err != nil {
			return err
		}

		weekCell, err := f.NewStyle(&excelize.Style{
			CustomNumFmt: &hoursFmt,
			Alignment:    &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return err
		}
		if numRows > 1 {
			start, _ = excelize.CoordinatesToCellName(5, 2)
			end, _ = excelize.CoordinatesToCellName(numCols, numRows)
			if err := f.SetCellStyle(weeklySheet, start, end, weekCell); err != nil {
				return err
			}
		}

		firstWeekCol, _ := excelize.ColumnNumberToName(5)
		lastWeekCol, _ := excelize.ColumnNumberToName(numCols)
		if err := f.SetColWidth(weeklySheet, firstWeekCol, lastWeekCol, 8); err != nil {
			return err
		}
	}

	// Keep the header row and name columns visible while scrolling weeks.
	return f.SetPanes(weeklySheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      4,
		YSplit:      1,
		TopLeftCell: "E2",
		ActivePane:  "bottomRight",
	})
}

func writeRaw(f *excelize.File, sessions []store.SessionRow) error {
	header := []interface{}{"Last Name", "First Name", "Barcode", "Checkin", "Checkout", "Hours"}
	if err := f.SetSheetRow(rawSheet, "A1", &header); err != nil {
		return err
	}

	for i, sess := range sessions {
		row := []interface{}{sess.LastName, sess.FirstName, sess.Barcode, sess.CheckIn, sess.CheckOut, sess.Hours}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(rawSheet, cell, &row); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(rawSheet, "A1", "F1", headerStyle); err != nil {
		return err
	}

	hoursFmt := "0.00"
	hoursStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &hoursFmt})
	if err != nil {
		return err
	}
	if len(sessions) > 0 {
		end, _ := excelize.CoordinatesToCellName(6, len(sessions)+1)
		if err := f.SetCellStyle(rawSheet, "F2", end, hoursStyle); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(rawSheet, "A", "C", 14); err != nil {
		return err
	}
	return f.SetColWidth(rawSheet, "D", "E", 22)
}
