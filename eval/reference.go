package eval

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Abraxas-365/finextract/extract"
)

// ReferenceRecord holds the externally supplied correct values for one
// filing. Fields may be absent when the reference dataset has no ground
// truth for them; absent reference fields are not compared.
type ReferenceRecord struct {
	Ticker                   string
	CIK                      string
	FiscalYear               *int
	NorthAmericaRevenue      *float64
	DepreciationAmortization *float64
	LeaseLiabilities         *float64
}

// LoadReferenceFile loads the reference dataset from a CSV file keyed by
// ticker, with one column per schema field.
func LoadReferenceFile(path string) (map[string]ReferenceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &EvaluationError{
			Op:      "load_references",
			Code:    ErrCodeBadReferenceFile,
			Message: "failed to open reference file",
			Err:     err,
		}
	}
	defer f.Close()

	return LoadReferences(f)
}

// LoadReferences parses reference records from CSV data. The first row
// is a header naming the columns; unknown columns are ignored.
func LoadReferences(r io.Reader) (map[string]ReferenceRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &EvaluationError{
			Op:      "load_references",
			Code:    ErrCodeBadReferenceFile,
			Message: "failed to parse reference CSV",
			Err:     err,
		}
	}
	if len(rows) < 2 {
		return nil, &EvaluationError{
			Op:      "load_references",
			Code:    ErrCodeBadReferenceFile,
			Message: "reference CSV has no data rows",
		}
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["ticker"]; !ok {
		return nil, &EvaluationError{
			Op:      "load_references",
			Code:    ErrCodeBadReferenceFile,
			Message: "reference CSV is missing the ticker column",
		}
	}

	refs := make(map[string]ReferenceRecord, len(rows)-1)
	for _, row := range rows[1:] {
		ticker := cell(row, columns, "ticker")
		if ticker == "" {
			continue
		}
		refs[ticker] = ReferenceRecord{
			Ticker:                   ticker,
			CIK:                      extract.NormalizeCIK(cell(row, columns, "cik")),
			FiscalYear:               parseIntCell(cell(row, columns, "fiscal_year")),
			NorthAmericaRevenue:      parseFloatCell(cell(row, columns, "north_america_revenue")),
			DepreciationAmortization: parseFloatCell(cell(row, columns, "depreciation_amortization")),
			LeaseLiabilities:         parseFloatCell(cell(row, columns, "lease_liabilities")),
		}
	}

	return refs, nil
}

func cell(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloatCell(s string) *float64 {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseIntCell(s string) *int {
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}
