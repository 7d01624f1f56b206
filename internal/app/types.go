package app

import (
	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

// MonthOption is one entry of the month selector.
type MonthOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CalendarResponse is the body of /api/calendar.
type CalendarResponse struct {
	Year   int                `json:"year"`
	Month  int                `json:"month"`
	Market string             `json:"market,omitempty"`
	Label  string             `json:"label"`
	Prev   calendar.Cursor    `json:"prev"`
	Next   calendar.Cursor    `json:"next"`
	Cells  []calendar.DayCell `json:"cells"`
}

// ShopView is an appearance as shown in the day details.
type ShopView struct {
	calendar.ShopAppearance
	DisplayMarket string `json:"display_market"`
}

// DayResponse is the body of /api/day.
type DayResponse struct {
	Date   calendar.DateKey `json:"date"`
	Label  string           `json:"label"`
	Market string           `json:"market,omitempty"`
	Count  int              `json:"count"`
	Shops  []ShopView       `json:"shops"`
}

func monthOptions(months []calendar.YearMonth) []MonthOption {
	opts := make([]MonthOption, 0, len(months))
	for _, ym := range months {
		opts = append(opts, MonthOption{Value: ym.String(), Label: ym.Label()})
	}
	return opts
}

func shopViews(idx *calendar.ShopIndex, shops []calendar.ShopAppearance) []ShopView {
	views := make([]ShopView, 0, len(shops))
	for _, s := range shops {
		views = append(views, ShopView{ShopAppearance: s, DisplayMarket: idx.MarketName(s.MarketID)})
	}
	return views
}
