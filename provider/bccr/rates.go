package bccr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sig-0/tcventanilla/provider/currencies"
	"github.com/sig-0/tcventanilla/storage/types"
)

var (
	errMissingColumn = errors.New("missing expected column")
	errNoUsableRows  = errors.New("no usable rows in table")
	errInvalidRate   = errors.New("invalid rate")
)

// RatesFromTable interprets the extracted ventanilla table as typed
// USD/CRC buy and sell rates, one pair per published date. Rows with
// blank rate cells (holidays, weekends) are skipped
func RatesFromTable(t *Table, fetchedAt time.Time) ([]*types.ExchangeRate, error) {
	dateCol := t.ColumnIndex("fecha", "date")
	buyCol := t.ColumnIndex("compra", "buy")
	sellCol := t.ColumnIndex("venta", "sell")

	if dateCol == -1 || buyCol == -1 || sellCol == -1 {
		return nil, fmt.Errorf(
			"%w: got headers %v",
			errMissingColumn,
			t.Headers,
		)
	}

	out := make([]*types.ExchangeRate, 0, len(t.Rows)*2)

	for _, row := range t.Rows {
		if row[buyCol] == "" || row[sellCol] == "" {
			continue
		}

		asOf, err := parseVentanillaDate(row[dateCol])
		if err != nil {
			continue
		}

		buy, err := parseVentanillaNumber(row[buyCol])
		if err != nil {
			continue
		}

		sell, err := parseVentanillaNumber(row[sellCol])
		if err != nil {
			continue
		}

		out = append(
			out,
			&types.ExchangeRate{
				AsOf:      asOf,
				FetchedAt: fetchedAt,
				Base:      currencies.USD,
				Target:    currencies.CRC,
				RateType:  types.RateTypeBUY,
				Source:    types.SourceBCCR,
				Rate:      buy,
			},
			&types.ExchangeRate{
				AsOf:      asOf,
				FetchedAt: fetchedAt,
				Base:      currencies.USD,
				Target:    currencies.CRC,
				RateType:  types.RateTypeSELL,
				Source:    types.SourceBCCR,
				Rate:      sell,
			},
		)
	}

	if len(out) == 0 {
		return nil, errNoUsableRows
	}

	return out, nil
}

// parseVentanillaDate parses the published date cell (day/month/year)
func parseVentanillaDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range []string{"02/01/2006", "2/1/2006", "02-01-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("date format is invalid %q", s)
}

// parseVentanillaNumber parses a rate cell. The site has published both
// "1.234,56" and "1,234.56" style numbers over time, so the rightmost
// separator is taken as the decimal point
func parseVentanillaNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errInvalidRate
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot != -1 && lastComma != -1:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma != -1:
		s = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse rate %q: %w", s, err)
	}

	return f, nil
}
