package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

var marketIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrInvalidMarketID rejects ids that cannot be used in file names.
var ErrInvalidMarketID = errors.New("invalid market id")

// DataSource provides the market list and per-market documents.
type DataSource interface {
	Markets(ctx context.Context) ([]calendar.Market, error)
	MarketInfo(ctx context.Context, marketID string) (*calendar.MarketInfo, error)
}

// NewDataSource picks the HTTP source when a data URL is configured and
// the data directory otherwise.
func NewDataSource(cfg *Config) DataSource {
	if cfg.DataURL != "" {
		return NewHTTPSource(cfg.DataURL, cfg.FetchTimeout)
	}
	return DirSource{Dir: cfg.DataDir}
}

// DirSource reads the JSON files from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Markets(ctx context.Context) ([]calendar.Market, error) {
	return ReadMarkets(filepath.Join(s.Dir, MarketsFile))
}

func (s DirSource) MarketInfo(ctx context.Context, marketID string) (*calendar.MarketInfo, error) {
	path, err := MarketInfoPath(s.Dir, marketID)
	if err != nil {
		return nil, err
	}
	var info calendar.MarketInfo
	if err := readJSONFile(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// HTTPSource fetches the same files from a static web host.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource builds a source rooted at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Markets(ctx context.Context) ([]calendar.Market, error) {
	var markets []calendar.Market
	if err := s.getJSON(ctx, MarketsFile, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

func (s *HTTPSource) MarketInfo(ctx context.Context, marketID string) (*calendar.MarketInfo, error) {
	if !marketIDPattern.MatchString(marketID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMarketID, marketID)
	}
	var info calendar.MarketInfo
	if err := s.getJSON(ctx, fmt.Sprintf(MarketInfoPattern, marketID), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, name string, v any) error {
	endpoint := s.baseURL + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", name, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("request %s: status=%d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// MarketInfoPath returns where a market's document lives in dir.
func MarketInfoPath(dir, marketID string) (string, error) {
	if !marketIDPattern.MatchString(marketID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMarketID, marketID)
	}
	return filepath.Join(dir, fmt.Sprintf(MarketInfoPattern, marketID)), nil
}

// ReadMarkets loads the market list file.
func ReadMarkets(path string) ([]calendar.Market, error) {
	var markets []calendar.Market
	if err := readJSONFile(path, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

func readJSONFile(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Error closing %s: %v", path, err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// SaveMarketInfo writes a market document, keeping the previous version
// as a backup. The new file is written next to the target and renamed
// into place so readers never see a partial document.
func SaveMarketInfo(dir string, info *calendar.MarketInfo) error {
	path, err := MarketInfoPath(dir, info.MarketID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmpFile := path + TmpSuffix
	if err := os.WriteFile(tmpFile, data, FilePermissions); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+BackupSuffix); err != nil {
			log.Printf("Warning: failed to create backup of %s: %v", path, err)
		}
	}

	return os.Rename(tmpFile, path)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, FilePermissions)
}

// CurrentIndex returns the index requests are served from.
func CurrentIndex() *calendar.ShopIndex {
	IndexMutex.RLock()
	defer IndexMutex.RUnlock()
	return shopIndex
}

// SetIndex replaces the served index in one step.
func SetIndex(idx *calendar.ShopIndex) {
	IndexMutex.Lock()
	shopIndex = idx
	IndexMutex.Unlock()
}

// LoadIndex reads all market data from src and builds a fresh index.
// Markets whose document fails to load are logged and left empty; only
// an unreadable market list is an error.
func LoadIndex(ctx context.Context, src DataSource, workers int) (*calendar.ShopIndex, error) {
	markets, err := src.Markets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load market list: %w", err)
	}

	idx, warnings, err := calendar.LoadAll(ctx, markets, src.MarketInfo, workers)
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		log.Printf("⚠️  Failed to load data for market %s: %v", w.MarketID, w.Err)
	}
	if n := idx.Rejected(); n > 0 {
		log.Printf("⚠️  Skipped %d appearances with an unreadable date", n)
	}
	log.Printf("Loaded %d appearances from %d markets", idx.Len(), len(markets)-len(warnings))
	return idx, nil
}

// LoadData builds the index from the configured source and serves it.
// On failure the previously served index stays in place.
func LoadData(ctx context.Context) error {
	if Source == nil {
		Source = NewDataSource(Settings)
	}
	idx, err := LoadIndex(ctx, Source, Settings.LoadWorkers)
	if err != nil {
		return err
	}
	SetIndex(idx)
	return nil
}
