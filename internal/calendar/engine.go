package calendar

import (
	"time"
)

// Engine renders month grids from an index.
// It keeps no navigation state; callers hold a Cursor.
type Engine struct {
	index *ShopIndex
}

// NewEngine wraps idx. A nil index renders empty days.
func NewEngine(idx *ShopIndex) *Engine {
	return &Engine{index: idx}
}

// Index returns the index the engine reads from.
func (e *Engine) Index() *ShopIndex {
	return e.index
}

// Render builds the 42 cells for the month, each carrying the appearances
// of the selected market (all markets for "") on that day.
func (e *Engine) Render(year int, month time.Month, marketID string) []DayCell {
	grid := BuildGrid(year, month)
	byDate := groupByDate(FilterByMarket(e.index.All(), marketID))

	cells := make([]DayCell, len(grid))
	for i, d := range grid {
		key := d.Key()
		appearances := byDate[key]
		if appearances == nil {
			appearances = []ShopAppearance{}
		}
		cells[i] = DayCell{
			Date:           d,
			Key:            key,
			Day:            d.Day,
			CalendarMonth:  int(d.Month),
			InCurrentMonth: d.Month == month,
			Appearances:    appearances,
		}
	}
	return cells
}

// RenderCursor renders the month and market selected by c.
func (e *Engine) RenderCursor(c Cursor) []DayCell {
	return e.Render(c.Year, c.Month, c.Market)
}

// Appearances returns what is shown when a single day is selected.
func (e *Engine) Appearances(key DateKey, marketID string) []ShopAppearance {
	return FilterByMarket(e.index.ByDate(key), marketID)
}

// Cursor is the month and market filter currently on screen.
type Cursor struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Market string     `json:"market,omitempty"`
}

// CursorAt returns a cursor on the month containing t, with no filter.
func CursorAt(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// YearMonth returns the month the cursor points at.
func (c Cursor) YearMonth() YearMonth {
	return YearMonth{Year: c.Year, Month: c.Month}
}

// Next moves one month forward.
func (c Cursor) Next() Cursor {
	return c.withMonth(c.YearMonth().Next())
}

// Prev moves one month back.
func (c Cursor) Prev() Cursor {
	return c.withMonth(c.YearMonth().Prev())
}

// JumpTo moves to ym, keeping the market filter.
func (c Cursor) JumpTo(ym YearMonth) Cursor {
	return c.withMonth(ym)
}

// WithMarket sets the market filter; "" clears it.
func (c Cursor) WithMarket(marketID string) Cursor {
	c.Market = marketID
	return c
}

func (c Cursor) withMonth(ym YearMonth) Cursor {
	c.Year, c.Month = ym.Year, ym.Month
	return c
}
