// Package importer parses uploaded bank-statement CSVs into import rows.
// Statements arrive with English, Portuguese or Spanish headers and assorted
// amount formats; everything is normalized here so the import service only
// ever sees clean rows.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Row is one parsed statement line: the shape the reconciliation matcher and
// import service consume.
type Row struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Statement is the result of parsing an uploaded file.
type Statement struct {
	Rows      []Row `json:"rows"`
	TotalRows int   `json:"totalRows"`
}

// accent-stripping transformer: decompose, drop combining marks, recompose.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldHeader(h string) string {
	folded, _, err := transform.String(deaccent, strings.ToLower(strings.TrimSpace(h)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(h))
	}
	return folded
}

// canonicalHeader maps a raw column header to "date", "description" or
// "amount", or returns "" for columns we ignore.
func canonicalHeader(h string) string {
	f := foldHeader(h)
	switch {
	case strings.Contains(f, "date") || f == "data" || f == "fecha":
		return "date"
	case strings.Contains(f, "description") || strings.Contains(f, "descri") ||
		strings.Contains(f, "merchant") || f == "lancamento":
		return "description"
	case strings.Contains(f, "amount") || strings.Contains(f, "value") || f == "valor":
		return "amount"
	}
	return ""
}

// Parse reads a statement CSV and returns its usable rows. Rows with a missing
// field or an unparseable amount are skipped, not errors: real bank exports
// carry headers, footers and blank lines we have no use for.
func Parse(r io.Reader) (*Statement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Statement{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read statement header: %w", err)
	}

	columns := make(map[string]int)
	for i, h := range header {
		if canonical := canonicalHeader(h); canonical != "" {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}
	for _, required := range []string{"date", "description", "amount"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("statement is missing a %s column", required)
		}
	}

	st := &Statement{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read statement row: %w", err)
		}

		row, ok := parseRecord(record, columns)
		if !ok {
			continue
		}
		st.Rows = append(st.Rows, row)
	}
	st.TotalRows = len(st.Rows)
	return st, nil
}

func parseRecord(record []string, columns map[string]int) (Row, bool) {
	field := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date := field("date")
	description := field("description")
	rawAmount := field("amount")
	if date == "" || description == "" || rawAmount == "" {
		return Row{}, false
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return Row{}, false
	}

	return Row{Date: date, Description: description, Amount: amount}, true
}

// ParseAmount cleans a raw amount cell ("R$ 1.234,56", "-52.00", "$1,200.00")
// into a float.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, raw)

	// Decide which separator is the decimal mark: whichever appears last.
	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	if lastComma > lastDot {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", -1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	return strconv.ParseFloat(cleaned, 64)
}

// dateLayouts are tried in order when parsing a row's date cell. ISO first,
// then day-first (the common Brazilian bank format), then month-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02/01/06",
	"2 Jan 2006",
}

// ParseDate parses a statement date cell at midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
}
