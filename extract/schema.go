package extract

import (
	"github.com/Abraxas-365/finextract/llm"
)

// RecordFunctionName is the function the backend is forced to call when
// it supports tool calls.
const RecordFunctionName = "record_financial_metrics"

// RecordFunction describes the target schema as a function definition.
// Backends that support tool calls are forced to call it; others are
// instructed to emit the same JSON object directly.
func RecordFunction() llm.Function {
	return llm.Function{
		Name:        RecordFunctionName,
		Description: "Record the financial metrics extracted from a 10-K filing. Use null for any value that cannot be found.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"company_ticker": map[string]interface{}{
					"type":        "string",
					"description": "Company ticker symbol",
				},
				"cik": map[string]interface{}{
					"type":        []string{"string", "null"},
					"description": "SEC Central Index Key, zero-padded to 10 digits",
				},
				"fiscal_year": map[string]interface{}{
					"type":        []string{"integer", "null"},
					"description": "Fiscal year of the report",
				},
				"north_america_revenue": map[string]interface{}{
					"type":        []string{"number", "null"},
					"description": "Revenue attributed to the North America region, in millions of USD",
				},
				"depreciation_amortization": map[string]interface{}{
					"type":        []string{"number", "null"},
					"description": "Total depreciation and amortization from the Cash Flow Statement, in millions of USD",
				},
				"lease_liabilities": map[string]interface{}{
					"type":        []string{"number", "null"},
					"description": "Sum of current and non-current lease liabilities from the Balance Sheet, in millions of USD",
				},
			},
			"required": []string{"company_ticker"},
		},
	}
}

// baselineInstructions is the field instruction set for the baseline
// strategy. It doubles as the retrieval query.
const baselineInstructions = `Extract the following financial metrics for the most recent fiscal year:
1. North America Revenue (or US Revenue) - from Segment Information or Geographic Revenue tables
2. Depreciation and Amortization - from the Cash Flow Statement
3. Total Lease Liabilities (sum of current and non-current) - from the Balance Sheet

Return the values in millions of USD. If a value cannot be found, use null rather than guessing.`

// refinedInstructions is the stricter, table-aware instruction set used
// by the refined strategy over structure-filtered context.
const refinedInstructions = `Extract the following financial metrics for the most recent fiscal year from the 10-K report:

1. North America Revenue (or US Revenue):
   - Look in Segment Information tables (Item 1, Item 7, or Item 8)
   - Find revenue attributed to the North America or United States region
   - Value should be in millions of USD

2. Depreciation and Amortization:
   - Look in the Statement of Cash Flows (Item 8)
   - Find the line item "Depreciation and amortization" or "Depreciation and amortization expense"
   - Value should be in millions of USD

3. Total Lease Liabilities:
   - Look in the Balance Sheet (Item 8)
   - Find "Lease liabilities" or "Operating lease liabilities"
   - If split between "Current" and "Non-current", sum them
   - If a "Total" line exists, use that
   - Value should be in millions of USD

Pay special attention to:
- Table structure (rows and columns)
- Fiscal year labels (ensure you get the most recent year)
- Units (convert to millions if needed)
- Negative numbers (may be in parentheses)

If a value cannot be found, use null rather than guessing.`

// systemPrompt frames every generation request.
const systemPrompt = `You are a financial analyst extracting structured data from SEC 10-K filings. Work only from the context provided. Report numeric values in millions of USD. Use null for any value you cannot find in the context; never guess.`

// outputShape spells out the exact JSON object the record parser
// accepts. It goes into every prompt so backends without tool calls
// still see the key names; tool-call backends receive the same shape
// again through RecordFunction.
const outputShape = `Report the result as a single JSON object with exactly these keys:

{
  "company_ticker": "<string>",
  "cik": "<SEC Central Index Key string, or null>",
  "fiscal_year": <integer or null>,
  "north_america_revenue": <number in millions of USD, or null>,
  "depreciation_amortization": <number in millions of USD, or null>,
  "lease_liabilities": <number in millions of USD, or null>
}`

// reformatInstruction is appended when the first response failed to parse.
const reformatInstruction = `Your previous response could not be parsed. Respond with exactly one JSON object and nothing else: no prose, no markdown fences, no comments. Use exactly these keys: "company_ticker", "cik", "fiscal_year", "north_america_revenue", "depreciation_amortization", "lease_liabilities". Use null for any value you could not find.`
