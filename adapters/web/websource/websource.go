// Package websource loads normalized filing texts over HTTP, for setups
// that serve filings from an internal mirror instead of local disk.
package websource

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Abraxas-365/finextract/datasource"
)

type WebSource struct {
	urls   []string
	client *http.Client
}

func NewWebSource(urls []string, timeout time.Duration) *WebSource {
	return &WebSource{
		urls: urls,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (w *WebSource) Load(ctx context.Context, opts ...datasource.Option) ([]datasource.Filing, error) {
	options := &datasource.LoadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var filings []datasource.Filing

	for _, url := range w.urls {
		if options.MaxItems > 0 && len(filings) >= options.MaxItems {
			break
		}

		metadata := map[string]interface{}{
			"url": url,
		}

		if options.Filter != nil && !options.Filter(metadata) {
			continue
		}

		content, err := w.fetchURL(ctx, url)
		if err != nil {
			return nil, err
		}

		filings = append(filings, datasource.Filing{
			Ticker:   datasource.TickerFromName(url),
			Content:  content,
			FileType: datasource.FileTypeFromName(url),
			Source:   url,
			Metadata: metadata,
		})
	}

	return filings, nil
}

func (w *WebSource) fetchURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", &datasource.DataSourceError{
			Source:  "web",
			Op:      "fetchURL",
			Err:     err,
			Code:    datasource.ErrCodeInvalidSource,
			Message: "invalid URL",
		}
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", &datasource.DataSourceError{
			Source:  "web",
			Op:      "fetchURL",
			Err:     err,
			Code:    datasource.ErrCodeInternal,
			Message: "failed to fetch URL",
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &datasource.DataSourceError{
			Source:  "web",
			Op:      "fetchURL",
			Code:    datasource.ErrCodeNotFound,
			Message: "failed to fetch URL: " + resp.Status,
		}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &datasource.DataSourceError{
			Source:  "web",
			Op:      "fetchURL",
			Err:     err,
			Code:    datasource.ErrCodeInternal,
			Message: "failed to read response body",
		}
	}

	return string(content), nil
}
