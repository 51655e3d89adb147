package workbook

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockroom/internal/models"
)

// Separators inside a code are percent-escaped so any code survives.
var codeEscaper = strings.NewReplacer("%", "%25", ":", "%3A", ";", "%3B")

// EncodeLines flattens order lines into "code:qty:price" triples joined
// with ";", the layout of the Orders sheet's last column.
func EncodeLines(lines []models.OrderLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = codeEscaper.Replace(l.MaterialCode) + ":" + strconv.FormatFloat(l.Quantity, 'f', -1, 64) + ":" + l.UnitPrice.String()
	}
	return strings.Join(parts, ";")
}

// DecodeLines parses the output of EncodeLines. Positions follow the
// encoded order and line totals are filled in.
func DecodeLines(s string) ([]models.OrderLine, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	lines := make([]models.OrderLine, 0, len(parts))
	for i, p := range parts {
		fields := strings.Split(p, ":")
		if len(fields) != 3 || fields[0] == "" {
			return nil, fmt.Errorf("line %d: malformed item %q", i+1, p)
		}
		code, err := url.PathUnescape(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: code: %w", i+1, err)
		}
		qty, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: quantity: %w", i+1, err)
		}
		price, err := decimal.NewFromString(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: price: %w", i+1, err)
		}
		lines = append(lines, models.OrderLine{Position: i, MaterialCode: code, Quantity: qty, UnitPrice: price})
	}
	models.OrderTotal(lines)
	return lines, nil
}
