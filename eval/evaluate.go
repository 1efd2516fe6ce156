package eval

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/Abraxas-365/finextract/extract"
)

// DefaultTolerance is the relative error below which a numeric field
// counts as a match.
const DefaultTolerance = 0.01

// zeroReferenceTolerance is the absolute-error threshold, in millions of
// USD, used when the reference value is zero and relative error is
// undefined.
const zeroReferenceTolerance = 1.0

// Severity classifies the magnitude of a numeric extraction error.
type Severity string

const (
	SeverityNone     Severity = "none"     // within tolerance
	SeverityMinor    Severity = "minor"    // rounding/formatting
	SeverityModerate Severity = "moderate" // partial match
	SeverityMajor    Severity = "major"    // wrong value or column
)

// ClassifySeverity maps a relative error to a severity bucket. The
// boundaries at 1%, 10% and 50% are inclusive on the lower class.
func ClassifySeverity(relativeError float64) Severity {
	switch {
	case relativeError <= 0.01:
		return SeverityNone
	case relativeError <= 0.10:
		return SeverityMinor
	case relativeError <= 0.50:
		return SeverityModerate
	default:
		return SeverityMajor
	}
}

// FieldComparison is the comparison of one numeric metric field.
type FieldComparison struct {
	Field         string   `json:"field"`
	Extracted     *float64 `json:"extracted"`
	Reference     *float64 `json:"reference"`
	Match         bool     `json:"match"`
	AbsoluteError *float64 `json:"absolute_error,omitempty"`
	RelativeError *float64 `json:"relative_error,omitempty"`
	Severity      Severity `json:"severity"`
	// SuspectReference flags a reference value outside the field's
	// plausibility bounds; the evaluator surfaces bad ground truth
	// rather than silently trusting it.
	SuspectReference bool `json:"suspect_reference,omitempty"`
}

// IdentifierComparison is the comparison of an identifier field,
// exact-after-normalization.
type IdentifierComparison struct {
	Field     string `json:"field"`
	Extracted string `json:"extracted"`
	Reference string `json:"reference"`
	Match     bool   `json:"match"`
}

// Accuracy is matches over compared fields. It is explicitly undefined,
// not zero, when nothing was compared.
type Accuracy struct {
	Matches  int `json:"matches"`
	Compared int `json:"compared"`
}

// Value returns the accuracy ratio; ok is false when the accuracy is
// undefined because zero fields were compared.
func (a Accuracy) Value() (float64, bool) {
	if a.Compared == 0 {
		return 0, false
	}
	return float64(a.Matches) / float64(a.Compared), true
}

func (a Accuracy) add(b Accuracy) Accuracy {
	return Accuracy{
		Matches:  a.Matches + b.Matches,
		Compared: a.Compared + b.Compared,
	}
}

// MarshalJSON emits the ratio as null when the accuracy is undefined.
func (a Accuracy) MarshalJSON() ([]byte, error) {
	type alias struct {
		Matches  int      `json:"matches"`
		Compared int      `json:"compared"`
		Value    *float64 `json:"value"`
	}
	out := alias{Matches: a.Matches, Compared: a.Compared}
	if v, ok := a.Value(); ok {
		out.Value = &v
	}
	return json.Marshal(out)
}

// DocumentReport aggregates the field comparisons for one record.
type DocumentReport struct {
	Ticker      string                 `json:"ticker"`
	Strategy    extract.Strategy       `json:"strategy,omitempty"`
	Identifiers []IdentifierComparison `json:"identifiers,omitempty"`
	Fields      []FieldComparison      `json:"fields,omitempty"`
	Accuracy    Accuracy               `json:"accuracy"`
	Error       string                 `json:"error,omitempty"`
}

// Report is the evaluation of one set of records.
type Report struct {
	Documents []DocumentReport `json:"documents"`
	Overall   Accuracy         `json:"overall_accuracy"`
}

// fieldBounds are per-field plausibility ranges, in millions of USD,
// used to flag suspect reference values.
var fieldBounds = map[string][2]float64{
	"north_america_revenue":     {1, 1_000_000},
	"depreciation_amortization": {0.1, 150_000},
	"lease_liabilities":         {0.1, 500_000},
}

// Evaluate scores records against the reference dataset. A record whose
// key has no reference row is reported with a recorded error, never a
// hard stop.
func Evaluate(records []extract.FinancialMetrics, refs map[string]ReferenceRecord, tolerance float64) Report {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	report := Report{}
	for _, rec := range records {
		docReport := evaluateDocument(rec, refs, tolerance)
		report.Overall = report.Overall.add(docReport.Accuracy)
		report.Documents = append(report.Documents, docReport)
	}
	return report
}

// EvaluateResults scores a run's result set, one report per strategy, so
// baseline and refined numbers are directly comparable.
func EvaluateResults(results extract.Results, refs map[string]ReferenceRecord, tolerance float64) map[extract.Strategy]Report {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	reports := make(map[extract.Strategy]Report)
	for _, res := range results {
		docReport := evaluateDocument(res.Record, refs, tolerance)
		docReport.Strategy = res.Strategy

		rep := reports[res.Strategy]
		rep.Overall = rep.Overall.add(docReport.Accuracy)
		rep.Documents = append(rep.Documents, docReport)
		reports[res.Strategy] = rep
	}
	return reports
}

func evaluateDocument(rec extract.FinancialMetrics, refs map[string]ReferenceRecord, tolerance float64) DocumentReport {
	report := DocumentReport{Ticker: rec.CompanyTicker}

	ref, ok := refs[rec.CompanyTicker]
	if !ok {
		report.Error = ErrMissingReference(rec.CompanyTicker).Error()
		return report
	}

	identifiers := []struct {
		field     string
		extracted string
		reference string
	}{
		{"cik", extract.NormalizeCIK(rec.CIK), ref.CIK},
		{"fiscal_year", formatYear(rec.FiscalYear), formatYear(ref.FiscalYear)},
	}

	for _, id := range identifiers {
		// Only identifiers the reference supplies are compared
		if id.reference == "" {
			continue
		}
		cmp := IdentifierComparison{
			Field:     id.field,
			Extracted: id.extracted,
			Reference: id.reference,
			Match:     id.extracted == id.reference,
		}
		report.Identifiers = append(report.Identifiers, cmp)
		report.Accuracy.Compared++
		if cmp.Match {
			report.Accuracy.Matches++
		}
	}

	numeric := []struct {
		field     string
		extracted *float64
		reference *float64
	}{
		{"north_america_revenue", rec.NorthAmericaRevenue, ref.NorthAmericaRevenue},
		{"depreciation_amortization", rec.DepreciationAmortization, ref.DepreciationAmortization},
		{"lease_liabilities", rec.LeaseLiabilities, ref.LeaseLiabilities},
	}

	for _, n := range numeric {
		// Only fields the reference has ground truth for are compared
		if n.reference == nil {
			continue
		}
		cmp := compareNumeric(n.field, n.extracted, n.reference, tolerance)
		report.Fields = append(report.Fields, cmp)
		report.Accuracy.Compared++
		if cmp.Match {
			report.Accuracy.Matches++
		}
	}

	return report
}

func compareNumeric(field string, extracted, reference *float64, tolerance float64) FieldComparison {
	cmp := FieldComparison{
		Field:            field,
		Extracted:        extracted,
		Reference:        reference,
		SuspectReference: outOfBounds(field, *reference),
	}

	// A missing value is a wrong value
	if extracted == nil {
		cmp.Severity = SeverityMajor
		return cmp
	}

	absErr := math.Abs(*extracted - *reference)
	cmp.AbsoluteError = &absErr

	if *reference == 0 {
		// Relative error is undefined against a zero reference
		cmp.Match = absErr <= zeroReferenceTolerance
		if cmp.Match {
			cmp.Severity = SeverityNone
		} else {
			cmp.Severity = SeverityMajor
		}
		return cmp
	}

	relErr := absErr / math.Abs(*reference)
	cmp.RelativeError = &relErr
	cmp.Match = relErr <= tolerance
	cmp.Severity = ClassifySeverity(relErr)
	return cmp
}

func formatYear(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}

func outOfBounds(field string, reference float64) bool {
	bounds, ok := fieldBounds[field]
	if !ok {
		return false
	}
	return reference < bounds[0] || reference > bounds[1]
}
