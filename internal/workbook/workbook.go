// Package workbook moves the whole store in and out of an .xlsx file with
// one sheet per table.
package workbook

import (
	"context"
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"

	"stockroom/internal/store"
)

type Snapshotter interface {
	Snapshot(ctx context.Context) (store.Snapshot, error)
}

type Restorer interface {
	Restore(ctx context.Context, snap store.Snapshot) (map[string]int, error)
}

// RowError reports a row that could not be decoded. Row is 1-based as
// shown by spreadsheet programs.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *RowError) Error() string { return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Export writes every table of src into a new workbook.
func Export(ctx context.Context, src Snapshotter) (*excelize.File, error) {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Write(snap)
}

func Write(snap store.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1F4E79"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	rows := sheetRows(snap)
	for i, sheet := range sheetOrder {
		if i == 0 {
			err = f.SetSheetName("Sheet1", sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		hdr := headers[sheet]
		for c, h := range hdr {
			col, _ := excelize.ColumnNumberToName(c + 1)
			f.SetCellValue(sheet, col+"1", h)
		}
		last, _ := excelize.ColumnNumberToName(len(hdr))
		f.SetCellStyle(sheet, "A1", last+"1", headerStyle)
		f.SetColWidth(sheet, "A", last, 18)
		for r, row := range rows[sheet] {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				f.Close()
				return nil, fmt.Errorf("sheet %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	return f, nil
}

// Read decodes a workbook in the Export layout. Missing sheets read as
// empty tables; rows with an empty first column are ignored.
func Read(f *excelize.File) (store.Snapshot, error) {
	var snap store.Snapshot
	present := f.GetSheetList()
	for _, sheet := range sheetOrder {
		if !slices.Contains(present, sheet) {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("read %s: %w", sheet, err)
		}
		for i, row := range rows {
			if i == 0 || len(row) == 0 || row[0] == "" {
				continue
			}
			if err := decodeRow(&snap, sheet, &rowReader{row: row}); err != nil {
				return store.Snapshot{}, &RowError{Sheet: sheet, Row: i + 1, Err: err}
			}
		}
	}
	return snap, nil
}

// Restore reads f and inserts the rows dst does not have yet.
func Restore(ctx context.Context, f *excelize.File, dst Restorer) (map[string]int, error) {
	snap, err := Read(f)
	if err != nil {
		return nil, err
	}
	return dst.Restore(ctx, snap)
}
