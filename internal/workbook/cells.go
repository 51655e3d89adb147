package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) any {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func money(d decimal.Decimal) any { return d.InexactFloat64() }

// rowReader walks one sheet row column by column. The first parse failure
// sticks and later reads return zero values.
type rowReader struct {
	row []string
	col int
	err error
}

func (r *rowReader) next() string {
	r.col++
	if r.col-1 < len(r.row) {
		return strings.TrimSpace(r.row[r.col-1])
	}
	return ""
}

func (r *rowReader) fail(kind, v string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("column %d: %s %q: %w", r.col, kind, v, err)
	}
}

func (r *rowReader) str() string { return r.next() }

func (r *rowReader) float() float64 {
	v := r.next()
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail("number", v, err)
	}
	return f
}

func (r *rowReader) integer() int {
	v := r.next()
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			r.fail("integer", v, err)
		}
		n = int(f)
	}
	return n
}

func (r *rowReader) dec() decimal.Decimal {
	v := r.next()
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		r.fail("amount", v, err)
	}
	return d
}

func (r *rowReader) boolean(def bool) bool {
	v := r.next()
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		r.fail("flag", v, err)
	}
	return b
}

func (r *rowReader) stamp() time.Time {
	v := r.next()
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{timeLayout, "2006-01-02 15:04", "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t
		}
	}
	r.fail("time", v, fmt.Errorf("unrecognised layout"))
	return time.Time{}
}

func (r *rowReader) stampPtr() *time.Time {
	t := r.stamp()
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *rowReader) strPtr() *string {
	v := r.next()
	if v == "" {
		return nil
	}
	return &v
}
