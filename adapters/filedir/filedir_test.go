package filedir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abraxas-365/finextract/datasource"
)

func writeFiling(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFiling(t, dir, "AAPL_Apple_10K_0000320193.txt", "apple filing text")
	writeFiling(t, dir, "MSFT_Microsoft_10K_0000789019.html", "<html>msft</html>")
	writeFiling(t, dir, "notes.md", "not a filing")

	filings, err := NewSource(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}
	if len(filings) != 2 {
		t.Fatalf("Load() returned %d filings, want 2", len(filings))
	}

	byTicker := make(map[string]datasource.Filing)
	for _, f := range filings {
		byTicker[f.Ticker] = f
	}

	aapl, ok := byTicker["AAPL"]
	if !ok {
		t.Fatal("AAPL filing missing")
	}
	if aapl.Content != "apple filing text" {
		t.Errorf("AAPL content = %q", aapl.Content)
	}
	if aapl.FileType != "pdf" {
		t.Errorf("AAPL file type = %q, want pdf for a .txt filing", aapl.FileType)
	}

	msft := byTicker["MSFT"]
	if msft.FileType != "html" {
		t.Errorf("MSFT file type = %q, want html", msft.FileType)
	}
}

func TestSource_LoadOptions(t *testing.T) {
	dir := t.TempDir()
	writeFiling(t, dir, "A_One_10K.txt", "a")
	writeFiling(t, dir, "B_Two_10K.txt", "b")
	writeFiling(t, dir, "C_Three_10K.txt", "c")

	t.Run("MaxItems caps the batch", func(t *testing.T) {
		filings, err := NewSource(dir).Load(context.Background(), datasource.WithMaxItems(2))
		if err != nil {
			t.Fatalf("Load() unexpected error = %v", err)
		}
		if len(filings) != 2 {
			t.Errorf("Load() returned %d filings, want 2", len(filings))
		}
	})

	t.Run("Filter drops filings by metadata", func(t *testing.T) {
		filings, err := NewSource(dir).Load(context.Background(),
			datasource.WithFilter(func(metadata map[string]interface{}) bool {
				path, _ := metadata["path"].(string)
				return filepath.Base(path)[0] != 'B'
			}))
		if err != nil {
			t.Fatalf("Load() unexpected error = %v", err)
		}
		if len(filings) != 2 {
			t.Errorf("Load() returned %d filings, want 2", len(filings))
		}
		for _, f := range filings {
			if f.Ticker == "B" {
				t.Error("filtered filing was loaded")
			}
		}
	})
}

func TestSource_LoadMissingDir(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "nope")).Load(context.Background())
	if err == nil {
		t.Error("Load() error = nil, want error for a missing directory")
	}
}
