package app

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

// ServeIndex renders the month page for the requested cursor
// Query params: year, month (or ym=YYYY-MM), market, date (selected day)
func ServeIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	cursor, errMsg := cursorFromQuery(r)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	idx := CurrentIndex()
	page := buildPage(idx, cursor)

	if v := r.URL.Query().Get("date"); v != "" {
		key, err := calendar.NormalizeDateKey(v)
		if err != nil {
			http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
			return
		}
		page.Selected = buildDayResponse(idx, key, cursor.Market)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		log.Printf("Error rendering page: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing page: %v", err)
	}
}

// GetConfig returns the selector contents: markets, months with data and
// the current month
func GetConfig(w http.ResponseWriter, r *http.Request) {
	idx := CurrentIndex()
	markets := idx.Markets()
	if markets == nil {
		markets = []calendar.Market{}
	}

	writeJSON(w, map[string]any{
		"markets":   markets,
		"months":    monthOptions(idx.DistinctMonths()),
		"current":   calendar.CursorAt(Now()),
		"adminMode": AdminMode,
		"weekdays":  calendar.WeekdayLabels,
	})
}

// HandleCalendar returns the 42 day cells of a month
// Query params: year, month (1-12), market (optional)
func HandleCalendar(w http.ResponseWriter, r *http.Request) {
	cursor, errMsg := cursorFromQuery(r)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	cells := calendar.NewEngine(CurrentIndex()).RenderCursor(cursor)
	writeJSON(w, CalendarResponse{
		Year:   cursor.Year,
		Month:  int(cursor.Month),
		Market: cursor.Market,
		Label:  cursor.YearMonth().Label(),
		Prev:   cursor.Prev(),
		Next:   cursor.Next(),
		Cells:  cells,
	})
}

// HandleDay returns the appearances of a single day
// Query params: date (YYYY-MM-DD), market (optional)
func HandleDay(w http.ResponseWriter, r *http.Request) {
	key, err := dateFromQuery(r, "date")
	if err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}
	writeJSON(w, buildDayResponse(CurrentIndex(), key, r.URL.Query().Get("market")))
}

func buildDayResponse(idx *calendar.ShopIndex, key calendar.DateKey, market string) *DayResponse {
	shops := calendar.NewEngine(idx).Appearances(key, market)
	return &DayResponse{
		Date:   key,
		Label:  key.Date().Label(),
		Market: market,
		Count:  len(shops),
		Shops:  shopViews(idx, shops),
	}
}

// HandleDownload exports one month of appearances as ICS, CSV or JSON
// Query params: year, month, market (optional), format, reminder (HH:MM, ics only)
func HandleDownload(w http.ResponseWriter, r *http.Request) {
	cursor, errMsg := cursorFromQuery(r)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	idx := CurrentIndex()
	if cursor.Market != "" && !idx.HasMarket(cursor.Market) {
		http.Error(w, ErrUnknownMarket, http.StatusNotFound)
		return
	}

	var shops []calendar.ShopAppearance
	for _, cell := range calendar.NewEngine(idx).RenderCursor(cursor) {
		if cell.InCurrentMonth {
			shops = append(shops, cell.Appearances...)
		}
	}

	export := Export{
		Title:    exportTitle(idx, cursor),
		FileName: exportFileName(cursor),
		Shops:    shops,
	}

	switch r.URL.Query().Get("format") {
	case "ics":
		GenerateICS(w, r, export)
	case "csv":
		GenerateCSV(w, export)
	case "json":
		GenerateJSON(w, cursor, export)
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

// HandleSubscribe serves an ICS feed for calendar subscriptions
// URL: /api/subscribe/{market}, "all" for every market
// The feed covers the previous month onwards.
func HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	market := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/subscribe/"), "/")
	if market == "all" {
		market = ""
	}

	idx := CurrentIndex()
	if market != "" && !idx.HasMarket(market) {
		http.Error(w, ErrUnknownMarket, http.StatusNotFound)
		return
	}

	from := calendar.CursorAt(Now()).Prev().YearMonth().First().Key()

	var shops []calendar.ShopAppearance
	for _, s := range calendar.FilterByMarket(idx.All(), market) {
		if s.Date >= from {
			shops = append(shops, s)
		}
	}
	SortAppearancesByDate(shops)

	title := "キッチンカー出店カレンダー"
	if market != "" {
		title += " " + idx.MarketName(market)
	}
	GenerateSubscriptionICS(w, title, shops)
}

// HandleReload reloads all market data (admin mode only)
func HandleReload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) || !RequireAdminMode(w) {
		return
	}

	if err := LoadData(r.Context()); err != nil {
		log.Printf("Error reloading data: %v", err)
		http.Error(w, ErrFailedToReload, http.StatusInternalServerError)
		return
	}

	idx := CurrentIndex()
	writeJSON(w, map[string]any{
		"status":      "ok",
		"appearances": idx.Len(),
		"markets":     len(idx.Markets()),
	})
}
