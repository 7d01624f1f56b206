package calendar

// UnknownMarketName is shown for appearances whose market is not listed.
const UnknownMarketName = "Unknown Market"

// Market is a venue hosting kitchen car appearances.
type Market struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShopRecord is one entry of a market_info document as it is stored on disk.
type ShopRecord struct {
	Name  string `json:"name"`
	Menu  string `json:"menu"`
	Hours string `json:"hours"`
	URL   string `json:"url,omitempty"`
	Date  string `json:"date"`
}

// MarketInfo is the per-market document listing upcoming appearances.
type MarketInfo struct {
	MarketID   string       `json:"market_id"`
	MarketName string       `json:"market_name"`
	ShopInfo   []ShopRecord `json:"shop_info"`
	ScrapedAt  string       `json:"scraped_at,omitempty"`
}

// ShopAppearance is a single scheduled visit of a shop at a market.
// Market fields are copied from the owning MarketInfo.
type ShopAppearance struct {
	Name       string  `json:"name"`
	Menu       string  `json:"menu"`
	Hours      string  `json:"hours"`
	URL        string  `json:"url,omitempty"`
	Date       DateKey `json:"date"`
	MarketID   string  `json:"market_id"`
	MarketName string  `json:"market_name"`
}

// DayCell is one position of a rendered month grid.
type DayCell struct {
	Date           Date             `json:"-"`
	Key            DateKey          `json:"date"`
	Day            int              `json:"day"`
	CalendarMonth  int              `json:"calendar_month"`
	InCurrentMonth bool             `json:"in_current_month"`
	Appearances    []ShopAppearance `json:"appearances"`
}

// Count returns the number of appearances on the day.
func (c DayCell) Count() int {
	return len(c.Appearances)
}
