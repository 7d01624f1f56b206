// Package scraper collects upcoming kitchen car appearances from the
// public market pages and turns them into market_info documents.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

const (
	DefaultBaseURL   = "https://www.mellow.jp/ss_web/markets/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout   = 10 * time.Second

	// Unknown fills fields missing from a shop card.
	Unknown = "不明"

	marketTitlePrefix = "キッチンカー出店情報："
	scrapedAtLayout   = "2006-01-02 15:04:05"
)

// ErrNoShops is returned when a page has no recognisable shop cards.
// It usually means the page layout changed.
var ErrNoShops = errors.New("no shop information found on page")

// Scraper fetches market pages over HTTP.
type Scraper struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
	now        func() time.Time
}

// New builds a scraper. Empty arguments fall back to the defaults.
func New(baseURL, userAgent string, timeout time.Duration) (*Scraper, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scraper{
		baseURL:    u,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}, nil
}

// PageURL returns the address of a market page.
func (s *Scraper) PageURL(marketID string) *url.URL {
	return s.baseURL.ResolveReference(&url.URL{Path: marketID})
}

// FetchPage downloads the HTML of a market page.
func (s *Scraper) FetchPage(ctx context.Context, marketID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.PageURL(marketID).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch market page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch market page: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read market page: %w", err)
	}
	return body, nil
}

// MarketInfo scrapes one market and returns its document.
func (s *Scraper) MarketInfo(ctx context.Context, marketID string) (*calendar.MarketInfo, error) {
	page, err := s.FetchPage(ctx, marketID)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse market page: %w", err)
	}

	now := s.now()
	shops, err := ParseShops(doc, s.PageURL(marketID), now)
	if err != nil {
		return nil, err
	}

	return &calendar.MarketInfo{
		MarketID:   marketID,
		MarketName: ParseMarketName(doc),
		ShopInfo:   shops,
		ScrapedAt:  now.Format(scrapedAtLayout),
	}, nil
}
