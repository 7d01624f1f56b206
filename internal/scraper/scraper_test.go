package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const marketPage = `<!doctype html>
<html><body>
<h3 class="fw-bold">キッチンカー出店情報：中央公園マルシェ</h3>
<div class="row g-4">
  <div class="col-lg-4">
    <a class="text-body" href="/ss_web/shops/abc">
      <div class="card-title"> カレー号 </div>
    </a>
    <div class="card-text">スパイスカレー</div>
    <div class="card-text">11:00〜14:00</div>
    <div class="card-text">次回出店3月5日</div>
  </div>
  <div class="col-lg-4">
    <div class="card-title">クレープ屋</div>
    <div class="card-text">いちごクレープ</div>
  </div>
</div>
</body></html>`

func parse(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestParseShops(t *testing.T) {
	pageURL, _ := url.Parse("https://www.mellow.jp/ss_web/markets/pAT5dN")
	ref := time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)

	shops, err := ParseShops(parse(t, marketPage), pageURL, ref)
	require.NoError(t, err)
	require.Len(t, shops, 2)

	require.Equal(t, "カレー号", shops[0].Name)
	require.Equal(t, "スパイスカレー", shops[0].Menu)
	require.Equal(t, "11:00〜14:00", shops[0].Hours)
	require.Equal(t, "2024-03-05", shops[0].Date)
	require.Equal(t, "https://www.mellow.jp/ss_web/shops/abc", shops[0].URL)

	// Incomplete card keeps placeholders.
	require.Equal(t, "クレープ屋", shops[1].Name)
	require.Equal(t, Unknown, shops[1].Menu)
	require.Equal(t, Unknown, shops[1].Date)
	require.Empty(t, shops[1].URL)
}

func TestParseShopsLayoutChanged(t *testing.T) {
	_, err := ParseShops(parse(t, `<html><body><div class="row">nothing</div></body></html>`), nil, time.Now())
	require.ErrorIs(t, err, ErrNoShops)

	_, err = ParseShops(parse(t, `<html><body><div class="row g-4"></div></body></html>`), nil, time.Now())
	require.ErrorIs(t, err, ErrNoShops)
}

func TestParseMarketName(t *testing.T) {
	require.Equal(t, "中央公園マルシェ", ParseMarketName(parse(t, marketPage)))
	require.Equal(t, Unknown, ParseMarketName(parse(t, `<html></html>`)))
}

func TestNormalizeShopDate(t *testing.T) {
	ref := time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want string
	}{
		{"次回出店3月5日", "2025-03-05"},
		{"次回出店12月1日", "2024-12-01"},
		{"次回出店11月30日", "2024-11-30"},
		{"次回出店5月20日", "2024-05-20"},
		{"未定", "未定"},
		{"次回出店13月1日", "次回出店13月1日"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeShopDate(tt.in, ref))
		})
	}
}

func TestMarketInfo(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/ss_web/markets/pAT5dN" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(marketPage))
	}))
	defer srv.Close()

	s, err := New(srv.URL+"/ss_web/markets", "test-agent", time.Second)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC) }

	info, err := s.MarketInfo(context.Background(), "pAT5dN")
	require.NoError(t, err)
	require.Equal(t, "test-agent", gotUA)
	require.Equal(t, "pAT5dN", info.MarketID)
	require.Equal(t, "中央公園マルシェ", info.MarketName)
	require.Equal(t, "2024-02-01 10:30:00", info.ScrapedAt)
	require.Len(t, info.ShopInfo, 2)
	require.Equal(t, srv.URL+"/ss_web/shops/abc", info.ShopInfo[0].URL)

	_, err = s.MarketInfo(context.Background(), "missing")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNoShops))
}
