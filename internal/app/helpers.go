package app

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// RequireAdminMode validates that admin mode is enabled
func RequireAdminMode(w http.ResponseWriter) bool {
	if !AdminMode {
		http.Error(w, ErrAdminModeDisabled, http.StatusForbidden)
		return false
	}
	return true
}

// SortAppearancesByDate orders appearances by date, keeping the load
// order within a day.
func SortAppearancesByDate(shops []calendar.ShopAppearance) {
	slices.SortStableFunc(shops, func(a, b calendar.ShopAppearance) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
}

// cursorFromQuery reads year, month and market from the query string.
// Missing year or month default to the current month.
func cursorFromQuery(r *http.Request) (calendar.Cursor, string) {
	q := r.URL.Query()
	cursor := calendar.CursorAt(Now()).WithMarket(q.Get("market"))

	if v := q.Get("ym"); v != "" {
		ym, err := calendar.ParseYearMonth(v)
		if err != nil {
			return cursor, ErrInvalidMonth
		}
		return cursor.JumpTo(ym), ""
	}

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 || year > 9999 {
			return cursor, ErrInvalidYear
		}
		cursor.Year = year
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return cursor, ErrInvalidMonth
		}
		cursor.Month = time.Month(month)
	}
	return cursor, ""
}

// dateFromQuery reads a YYYY-MM-DD date parameter.
func dateFromQuery(r *http.Request, name string) (calendar.DateKey, error) {
	return calendar.NormalizeDateKey(r.URL.Query().Get(name))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
	}
}
