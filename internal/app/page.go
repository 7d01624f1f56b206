package app

import (
	"embed"
	"html/template"
	"net/url"
	"strconv"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

//go:embed templates/page.html
var templateFiles embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"cursorQuery": cursorQuery,
	"dayQuery":    dayQuery,
}).ParseFS(templateFiles, "templates/page.html"))

// PageData feeds the month page template.
type PageData struct {
	Cursor   calendar.Cursor
	Current  string
	Label    string
	Prev     calendar.Cursor
	Next     calendar.Cursor
	Weekdays [7]string
	Weeks    [][]calendar.DayCell
	Markets  []calendar.Market
	Months   []MonthOption
	Selected *DayResponse
}

func buildPage(idx *calendar.ShopIndex, cursor calendar.Cursor) PageData {
	cells := calendar.NewEngine(idx).RenderCursor(cursor)
	weeks := make([][]calendar.DayCell, 0, calendar.GridWeeks)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return PageData{
		Cursor:   cursor,
		Current:  cursor.YearMonth().String(),
		Label:    cursor.YearMonth().Label(),
		Prev:     cursor.Prev(),
		Next:     cursor.Next(),
		Weekdays: calendar.WeekdayLabels,
		Weeks:    weeks,
		Markets:  idx.Markets(),
		Months:   monthOptions(idx.DistinctMonths()),
	}
}

// cursorQuery links to the month page of c.
func cursorQuery(c calendar.Cursor) template.URL {
	v := url.Values{}
	v.Set("year", strconv.Itoa(c.Year))
	v.Set("month", strconv.Itoa(int(c.Month)))
	if c.Market != "" {
		v.Set("market", c.Market)
	}
	return template.URL("/?" + v.Encode())
}

// dayQuery links to the month page of c with key selected.
func dayQuery(c calendar.Cursor, key calendar.DateKey) template.URL {
	v := url.Values{}
	v.Set("year", strconv.Itoa(c.Year))
	v.Set("month", strconv.Itoa(int(c.Month)))
	if c.Market != "" {
		v.Set("market", c.Market)
	}
	v.Set("date", key.String())
	return template.URL("/?" + v.Encode())
}
