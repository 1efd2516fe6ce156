package document

// Document represents one normalized filing: an identifier, the full
// body of text produced by the upstream normalizer, and metadata.
type Document struct {
	Ticker     string                 `json:"ticker"`
	FiscalYear int                    `json:"fiscal_year,omitempty"`
	FileType   string                 `json:"file_type,omitempty"` // "pdf" or "html"
	Text       string                 `json:"text"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Segment is a contiguous substring of a document used as a unit of
// retrieval. Offset is the byte offset of Text within the document.
// Section carries a structural tag when the segment was produced by
// structured segmentation, and is empty for flat windows.
type Segment struct {
	Text    string `json:"text"`
	Offset  int    `json:"offset"`
	Section string `json:"section,omitempty"`
}

// Corpus is the ordered set of segments for one document.
type Corpus []Segment
