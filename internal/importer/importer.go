// Package importer reads materials out of foreign spreadsheets whose
// layout is only loosely known: headers are recognised by keyword and
// quantities may carry a unit word ("11 KUTU").
package importer

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"stockroom/internal/store"
)

var ErrNoProductColumn = errors.New("product name column not found")

// ParseError is returned when no product name column can be located. Found
// lists the header cells that were present.
type ParseError struct {
	Found []string
}

func (e *ParseError) Error() string {
	found := "none"
	if len(e.Found) > 0 {
		found = strings.Join(e.Found, ", ")
	}
	return ErrNoProductColumn.Error() + "; found columns: " + found
}

func (e *ParseError) Unwrap() error { return ErrNoProductColumn }

type Target interface {
	ImportMaterials(ctx context.Context, rows []store.ImportRow, fold func(string) string) (store.ImportResult, error)
}

type Importer struct {
	kw  *KeywordTable
	dst Target
	lg  *zap.SugaredLogger
}

func New(kw *KeywordTable, dst Target, lg *zap.SugaredLogger) *Importer {
	return &Importer{kw: kw, dst: dst, lg: lg}
}

// columns holds 1-based column positions; zero means absent.
type columns struct {
	number, product, quantity, status int
}

const (
	defaultProductCol  = 2
	defaultQuantityCol = 3
)

var quantityRe = regexp.MustCompile(`^(\d+)\s*(.*)$`)

func (im *Importer) detect(header []string) (columns, error) {
	var cols columns
	found := []string{}
	for i, cell := range header {
		h := im.kw.fold(cell)
		if h == "" {
			continue
		}
		found = append(found, strings.TrimSpace(cell))
		hk := im.kw.Headers
		// quantity before product: "ad" would otherwise claim "Adet"
		switch {
		case im.kw.containsAny(h, hk.Number) || im.exact(h, hk.NumberExact):
			setOnce(&cols.number, i+1)
		case im.kw.containsAny(h, hk.Quantity):
			setOnce(&cols.quantity, i+1)
		case im.kw.containsAny(h, hk.Product):
			setOnce(&cols.product, i+1)
		case im.kw.containsAny(h, hk.Status):
			setOnce(&cols.status, i+1)
		}
	}
	if cols.product == 0 {
		if len(header) < defaultProductCol {
			return cols, &ParseError{Found: found}
		}
		cols.product = defaultProductCol
	}
	if cols.quantity == 0 {
		cols.quantity = defaultQuantityCol
	}
	return cols, nil
}

func setOnce(col *int, v int) {
	if *col == 0 {
		*col = v
	}
}

func (im *Importer) exact(h string, words []string) bool {
	for _, w := range words {
		if h == im.kw.fold(w) {
			return true
		}
	}
	return false
}

// ParseQuantity splits a cell such as "11 KUTU" into a count and a unit.
// A bare number keeps the default unit; unreadable text counts as one and
// negative numbers count as zero.
func (im *Importer) ParseQuantity(raw string) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ""
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return max(float64(int(f)), 0), ""
	}
	if m := quantityRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		return float64(n), strings.TrimSpace(m[2])
	}
	return 1, ""
}

// Rows turns the first sheet of f into import rows.
func (im *Importer) Rows(f *excelize.File) ([]store.ImportRow, error) {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &ParseError{}
	}
	cols, err := im.detect(rows[0])
	if err != nil {
		return nil, err
	}
	cell := func(row []string, col int) string {
		if col <= 0 || col > len(row) {
			return ""
		}
		return strings.TrimSpace(row[col-1])
	}
	out := make([]store.ImportRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, cols.product)
		if name == "" {
			continue
		}
		qty, unitWord := im.ParseQuantity(cell(row, cols.quantity))
		r := store.ImportRow{Name: name, Quantity: qty, Unit: im.kw.DefaultUnit, Category: im.kw.Category(name)}
		if unitWord != "" {
			r.Unit = im.kw.Unit(unitWord)
		}
		out = append(out, r)
	}
	return out, nil
}

// Import parses f and stores the new materials in one transaction.
func (im *Importer) Import(ctx context.Context, f *excelize.File) (store.ImportResult, error) {
	rows, err := im.Rows(f)
	if err != nil {
		im.lg.Warnw("import rejected", "error", err)
		return store.ImportResult{}, err
	}
	return im.dst.ImportMaterials(ctx, rows, im.kw.Fold)
}
