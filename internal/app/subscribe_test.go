package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateSubscriptionICS(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateSubscriptionICS(w, "Feed", testShops())

	resp := w.Result()
	body := w.Body.String()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", resp.Header.Get("Content-Type"))
	}
	// Calendar apps need inline content for subscriptions.
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		t.Errorf("subscription should not have Content-Disposition, got %s", cd)
	}

	for _, field := range []string{"METHOD:PUBLISH", "X-PUBLISHED-TTL:PT6H", "X-WR-CALNAME:Feed", "BEGIN:VEVENT"} {
		if !strings.Contains(body, field) {
			t.Errorf("subscription missing %s", field)
		}
	}
	if strings.Contains(body, "BEGIN:VALARM") {
		t.Error("subscriptions must not contain alarms")
	}
}

func TestHandleSubscribe(t *testing.T) {
	useTestIndex(t)
	Now = func() time.Time { return time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantEvents int
	}{
		// Feed starts at March 1st: the December appearance is dropped.
		{name: "all markets", path: "/api/subscribe/all", wantStatus: http.StatusOK, wantEvents: 4},
		{name: "single market", path: "/api/subscribe/a", wantStatus: http.StatusOK, wantEvents: 3},
		{name: "unknown market", path: "/api/subscribe/zzz", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleSubscribe(w, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got := strings.Count(w.Body.String(), "BEGIN:VEVENT"); got != tt.wantEvents {
				t.Errorf("events = %d, want %d", got, tt.wantEvents)
			}
		})
	}
}
