package datasource

import (
	"context"
	"path/filepath"
	"strings"
)

// Filing represents one normalized filing from a source. Content is the
// plain text produced by the upstream normalizer; FileType records which
// normalizer was used ("pdf" or "html"), though both are treated
// uniformly as text downstream.
type Filing struct {
	Ticker   string
	Content  string
	FileType string
	Source   string
	Metadata map[string]interface{}
}

// DataSource represents a source of normalized filings
type DataSource interface {
	// Load loads filings from the source
	Load(ctx context.Context, opts ...Option) ([]Filing, error)
}

// TickerFromName derives the ticker from a filing's file name. Filings
// follow the `TICKER_Company_10K_0000.txt` naming convention; the ticker
// is the part before the first underscore.
func TickerFromName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.Index(base, "_"); i > 0 {
		return base[:i]
	}
	return base
}

// FileTypeFromName maps a filing's extension to the upstream normalizer
// that produced it.
func FileTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return "html"
	default:
		return "pdf"
	}
}
