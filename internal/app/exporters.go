package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

// Export is a month of appearances prepared for download.
type Export struct {
	Title    string
	FileName string
	Shops    []calendar.ShopAppearance
}

func exportTitle(idx *calendar.ShopIndex, c calendar.Cursor) string {
	title := "キッチンカー出店カレンダー " + c.YearMonth().Label()
	if c.Market != "" {
		title += " " + idx.MarketName(c.Market)
	}
	return title
}

func exportFileName(c calendar.Cursor) string {
	name := "kitchencar_" + c.YearMonth().String()
	if c.Market != "" {
		name += "_" + c.Market
	}
	return name
}

// icsWriter writes content lines terminated by CRLF and logs the first
// write error only.
type icsWriter struct {
	w   io.Writer
	err error
}

func (iw *icsWriter) line(format string, args ...any) {
	if iw.err != nil {
		return
	}
	if _, err := fmt.Fprintf(iw.w, format+"\r\n", args...); err != nil {
		iw.err = err
		log.Printf("Error writing to response: %v", err)
	}
}

// icsText escapes a TEXT value.
func icsText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)
	return r.Replace(s)
}

// appearanceUID is stable across exports so subscribed calendars update
// events in place instead of duplicating them.
func appearanceUID(s calendar.ShopAppearance) string {
	key := strings.Join([]string{s.MarketID, s.Date.String(), s.Name}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String() + "@" + ICSDomain
}

func writeVEvent(iw *icsWriter, s calendar.ShopAppearance, stamp string, alarm func(time.Time)) {
	d := s.Date.Date()
	if !d.Valid() {
		return
	}
	eventDate := d.Time()

	iw.line("BEGIN:VEVENT")
	iw.line("UID:%s", appearanceUID(s))
	iw.line("DTSTAMP:%s", stamp)
	iw.line("DTSTART;VALUE=DATE:%s", eventDate.Format("20060102"))
	iw.line("DTEND;VALUE=DATE:%s", eventDate.AddDate(0, 0, 1).Format("20060102"))
	iw.line("SUMMARY:%s", icsText(s.Name))
	iw.line("DESCRIPTION:%s", icsText(fmt.Sprintf("%s / %s", s.Menu, s.Hours)))
	iw.line("LOCATION:%s", icsText(s.MarketName))
	if s.URL != "" {
		iw.line("URL:%s", s.URL)
	}
	if alarm != nil {
		alarm(eventDate)
	}
	iw.line("END:VEVENT")
}

// GenerateICS writes an iCalendar download. An optional reminder=HH:MM
// query parameter adds an alarm on the day before each appearance.
func GenerateICS(w http.ResponseWriter, r *http.Request, export Export) {
	reminder := r.URL.Query().Get("reminder")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ics", export.FileName))

	iw := &icsWriter{w: w}
	iw.line("BEGIN:VCALENDAR")
	iw.line("VERSION:2.0")
	iw.line("PRODID:%s", ICSProductID)
	iw.line("X-WR-CALNAME:%s", icsText(export.Title))
	iw.line("X-WR-TIMEZONE:%s", ICSTimezone)
	iw.line("CALSCALE:GREGORIAN")

	stamp := Now().UTC().Format("20060102T150405Z")
	for _, s := range export.Shops {
		var alarm func(time.Time)
		if reminder != "" {
			name := s.Name
			alarm = func(eventDate time.Time) {
				AddAlarm(iw.w, eventDate, 1, reminder, name)
			}
		}
		writeVEvent(iw, s, stamp, alarm)
	}

	iw.line("END:VCALENDAR")
}

// AddAlarm adds a display alarm at alarmTime (HH:MM) daysBefore the
// all-day event. Malformed times add nothing.
func AddAlarm(w io.Writer, eventDate time.Time, daysBefore int, alarmTime string, description string) {
	hour, minute, ok := parseClock(alarmTime)
	if !ok {
		return
	}

	eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)
	alarmAt := eventStart.AddDate(0, 0, -daysBefore).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

	iw := &icsWriter{w: w}
	iw.line("BEGIN:VALARM")
	iw.line("ACTION:DISPLAY")
	iw.line("DESCRIPTION:%s", icsText("出店予定: "+description))
	iw.line("TRIGGER:%s", isoDuration(alarmAt.Sub(eventStart)))
	iw.line("END:VALARM")
}

func parseClock(s string) (hour, minute int, ok bool) {
	h, m, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// isoDuration formats d as an RFC 5545 trigger, e.g. -P0DT5H0M.
func isoDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int(d.Minutes())
	days := total / (24 * 60)
	hours := total % (24 * 60) / 60
	minutes := total % 60
	return fmt.Sprintf("%sP%dDT%dH%dM", sign, days, hours, minutes)
}

// GenerateCSV writes the appearances as CSV.
func GenerateCSV(w http.ResponseWriter, export Export) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", export.FileName))

	cw := csv.NewWriter(w)
	rows := [][]string{{"日付", "店名", "メニュー", "営業時間", "マーケット", "URL"}}
	for _, s := range export.Shops {
		rows = append(rows, []string{s.Date.String(), s.Name, s.Menu, s.Hours, s.MarketName, s.URL})
	}
	if err := cw.WriteAll(rows); err != nil {
		log.Printf("Error writing CSV export: %v", err)
	}
}

// GenerateJSON writes the appearances as a JSON document.
func GenerateJSON(w http.ResponseWriter, c calendar.Cursor, export Export) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", export.FileName))

	shops := export.Shops
	if shops == nil {
		shops = []calendar.ShopAppearance{}
	}
	data := map[string]any{
		"title":  export.Title,
		"month":  c.YearMonth().String(),
		"market": c.Market,
		"shops":  shops,
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON export: %v", err)
		http.Error(w, ErrFailedToGenerateJSON, http.StatusInternalServerError)
	}
}

// GenerateSubscriptionICS writes a feed for calendar subscriptions:
// served inline, no alarms, with a refresh hint.
func GenerateSubscriptionICS(w http.ResponseWriter, title string, shops []calendar.ShopAppearance) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")

	iw := &icsWriter{w: w}
	iw.line("BEGIN:VCALENDAR")
	iw.line("VERSION:2.0")
	iw.line("PRODID:%s", ICSProductID)
	iw.line("METHOD:PUBLISH")
	iw.line("X-WR-CALNAME:%s", icsText(title))
	iw.line("X-WR-TIMEZONE:%s", ICSTimezone)
	iw.line("CALSCALE:GREGORIAN")
	iw.line("X-PUBLISHED-TTL:PT6H")

	stamp := Now().UTC().Format("20060102T150405Z")
	for _, s := range shops {
		writeVEvent(iw, s, stamp, nil)
	}

	iw.line("END:VCALENDAR")
}
