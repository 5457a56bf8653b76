package bccr

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table is an extracted HTML table: the header row defines the schema,
// every data row has exactly as many cells as the header
type Table struct {
	Headers []string
	Rows    [][]string
}

// Records returns the table as raw records, header first
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Headers)
	out = append(out, t.Rows...)

	return out
}

// ColumnIndex returns the index of the first header containing any of
// the given cues (case-insensitive), or -1
func (t *Table) ColumnIndex(cues ...string) int {
	for i, h := range t.Headers {
		lower := strings.ToLower(h)

		for _, cue := range cues {
			if strings.Contains(lower, cue) {
				return i
			}
		}
	}

	return -1
}

// Header cues for recognizing the ventanilla table among unrelated
// page furniture (layout tables, navigation)
var headerCues = []string{
	"fecha",
	"date",
	"compra",
	"buy",
	"venta",
	"sell",
	"cambio",
	"dólar",
	"dolar",
}

// the ventanilla table is published as date / buy / sell
const expectedColumnCount = 3

// ExtractTable locates the exchange-rate table in the response document
// and parses it into a Table. A lone table is selected unconditionally;
// among several, the best header-cue score wins (ties broken by document
// order). Cell text is entity-decoded and whitespace-normalized
func ExtractTable(doc *goquery.Document) (*Table, error) {
	var candidates [][][]string

	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		raw := parseRawTable(sel)
		if len(raw) > 0 {
			candidates = append(candidates, raw)
		}
	})

	if len(candidates) == 0 {
		return nil, ErrNoTable
	}

	selected := candidates[0]

	if len(candidates) > 1 {
		best := -1

		for _, raw := range candidates {
			score := scoreHeader(raw[0])
			if score > best {
				best = score
				selected = raw
			}
		}

		if best <= 0 {
			return nil, ErrNoTable
		}
	}

	headers := selected[0]

	rows := make([][]string, 0, len(selected)-1)

	for i, row := range selected[1:] {
		if len(row) != len(headers) {
			return nil, &MalformedRowError{
				Row:   i + 1,
				Cells: len(row),
				Want:  len(headers),
			}
		}

		rows = append(rows, row)
	}

	return &Table{
		Headers: headers,
		Rows:    rows,
	}, nil
}

// parseRawTable reads a table element into rows of cell text,
// dropping rows without cells
func parseRawTable(table *goquery.Selection) [][]string {
	var raw [][]string

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string

		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cellText(cell))
		})

		if len(row) > 0 {
			raw = append(raw, row)
		}
	})

	return raw
}

// cellText trims and collapses the cell's rendered text. Entities are
// already decoded by the HTML parser. Empty cells stay empty
func cellText(cell *goquery.Selection) string {
	fields := strings.Fields(cell.Text())

	return strings.Join(fields, " ")
}

// scoreHeader rates how closely a header row matches the expected
// ventanilla schema: distinct cue hits, minus column-count distance
func scoreHeader(headers []string) int {
	score := 0

	for _, cue := range headerCues {
		for _, h := range headers {
			if strings.Contains(strings.ToLower(h), cue) {
				score += 2

				break
			}
		}
	}

	diff := len(headers) - expectedColumnCount
	if diff < 0 {
		diff = -diff
	}

	return score - diff
}
