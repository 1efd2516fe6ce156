package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CIKWidth is the canonical width of an SEC Central Index Key.
const CIKWidth = 10

// FinancialMetrics is the typed record extracted from one filing. Every
// metric field is independently present-or-absent; a nil field means the
// value was not found, never that it is zero. Numeric values are in
// millions of USD.
type FinancialMetrics struct {
	CompanyTicker            string   `json:"company_ticker"`
	CIK                      string   `json:"cik,omitempty"`
	FiscalYear               *int     `json:"fiscal_year,omitempty"`
	NorthAmericaRevenue      *float64 `json:"north_america_revenue,omitempty"`
	DepreciationAmortization *float64 `json:"depreciation_amortization,omitempty"`
	LeaseLiabilities         *float64 `json:"lease_liabilities,omitempty"`
}

// EmptyRecord returns a record with all optional fields absent, used when
// generation or validation fails for a document.
func EmptyRecord(ticker string) FinancialMetrics {
	return FinancialMetrics{CompanyTicker: ticker}
}

// ParseRecord parses a raw backend response into a FinancialMetrics
// record. The response may be the arguments of a function call, a bare
// JSON object, or JSON wrapped in markdown fences; numeric fields may
// arrive as formatted strings ("$1,234.5", "(42)").
func ParseRecord(raw string) (FinancialMetrics, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return FinancialMetrics{}, &ValidationError{
			Op:      "parse_record",
			Message: "response contains no JSON object",
		}
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return FinancialMetrics{}, &ValidationError{
			Op:      "parse_record",
			Message: "response is not valid JSON",
			Err:     err,
		}
	}

	rec := FinancialMetrics{
		CompanyTicker:            coerceString(fields["company_ticker"]),
		CIK:                      NormalizeCIK(coerceString(fields["cik"])),
		FiscalYear:               coerceInt(fields["fiscal_year"]),
		NorthAmericaRevenue:      coerceNumber(fields["north_america_revenue"]),
		DepreciationAmortization: coerceNumber(fields["depreciation_amortization"]),
		LeaseLiabilities:         coerceNumber(fields["lease_liabilities"]),
	}

	return rec, nil
}

// NormalizeCIK zero-pads an identifier to the canonical CIK width.
// Non-digit characters are stripped first; an empty identifier stays
// empty.
func NormalizeCIK(cik string) string {
	var digits strings.Builder
	for _, r := range cik {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if s == "" {
		return ""
	}
	if len(s) >= CIKWidth {
		return s
	}
	return strings.Repeat("0", CIKWidth-len(s)) + s
}

// extractJSON returns the outermost JSON object in raw, tolerating
// markdown fences and prose around it.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func coerceString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func coerceInt(v interface{}) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	return nil
}

// coerceNumber converts a numeric field to a float value, or nil when
// coercion fails. String values may carry commas, dollar signs and
// accounting-style parentheses for negatives.
func coerceNumber(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		s := strings.TrimSpace(n)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, "(", "-")
		s = strings.ReplaceAll(s, ")", "")
		s = strings.TrimSpace(s)
		if s == "" || s == "-" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	return nil
}
