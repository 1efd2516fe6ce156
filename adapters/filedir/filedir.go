// Package filedir loads normalized filing texts from a local directory.
package filedir

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/finextract/datasource"
)

// Source reads `TICKER_Company_10K_*.txt` (or .html) files from a
// directory, one filing per file.
type Source struct {
	dir string
}

func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

func (s *Source) Load(ctx context.Context, opts ...datasource.Option) ([]datasource.Filing, error) {
	options := &datasource.LoadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &datasource.DataSourceError{
			Source:  "filedir",
			Op:      "Load",
			Err:     err,
			Code:    datasource.ErrCodeInvalidSource,
			Message: "failed to read directory",
		}
	}

	var filings []datasource.Filing
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !isFilingFile(entry.Name()) {
			continue
		}
		if options.MaxItems > 0 && len(filings) >= options.MaxItems {
			break
		}

		path := filepath.Join(s.dir, entry.Name())
		metadata := map[string]interface{}{
			"path": path,
		}
		if options.Filter != nil && !options.Filter(metadata) {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, &datasource.DataSourceError{
				Source:  "filedir",
				Op:      "Load",
				Err:     err,
				Code:    datasource.ErrCodeInternal,
				Message: "failed to read filing " + entry.Name(),
			}
		}

		filings = append(filings, datasource.Filing{
			Ticker:   datasource.TickerFromName(entry.Name()),
			Content:  string(content),
			FileType: datasource.FileTypeFromName(entry.Name()),
			Source:   path,
			Metadata: metadata,
		})
	}

	return filings, nil
}

func isFilingFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".html", ".htm":
		return true
	default:
		return false
	}
}
