package calendar

import (
	"slices"
)

// ShopIndex holds every loaded appearance. It is built once and never
// modified afterwards, so it can be shared between goroutines freely.
type ShopIndex struct {
	markets  []Market
	names    map[string]string
	all      []ShopAppearance
	byDate   map[DateKey][]int
	months   []YearMonth
	rejected int
}

// BuildIndex flattens the market documents into an index.
// A nil document stands for a market whose data could not be loaded and
// contributes nothing. Records with an unusable date are skipped and
// counted in Rejected.
func BuildIndex(markets []Market, infos []*MarketInfo) *ShopIndex {
	idx := &ShopIndex{
		markets: slices.Clone(markets),
		names:   make(map[string]string, len(markets)),
		byDate:  make(map[DateKey][]int),
	}
	for _, m := range markets {
		idx.names[m.ID] = m.Name
	}

	seenMonths := make(map[YearMonth]struct{})
	for _, info := range infos {
		if info == nil {
			continue
		}
		for _, rec := range info.ShopInfo {
			key, err := NormalizeDateKey(rec.Date)
			if err != nil {
				idx.rejected++
				continue
			}
			idx.byDate[key] = append(idx.byDate[key], len(idx.all))
			idx.all = append(idx.all, ShopAppearance{
				Name:       rec.Name,
				Menu:       rec.Menu,
				Hours:      rec.Hours,
				URL:        rec.URL,
				Date:       key,
				MarketID:   info.MarketID,
				MarketName: info.MarketName,
			})
			seenMonths[key.YearMonth()] = struct{}{}
		}
	}

	for ym := range seenMonths {
		idx.months = append(idx.months, ym)
	}
	slices.SortFunc(idx.months, YearMonth.Compare)
	return idx
}

// All returns the appearances in load order.
func (idx *ShopIndex) All() []ShopAppearance {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.all)
}

// Len returns the number of indexed appearances.
func (idx *ShopIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.all)
}

// ByDate returns the appearances scheduled on key, in load order.
func (idx *ShopIndex) ByDate(key DateKey) []ShopAppearance {
	if idx == nil {
		return nil
	}
	positions := idx.byDate[key]
	out := make([]ShopAppearance, 0, len(positions))
	for _, p := range positions {
		out = append(out, idx.all[p])
	}
	return out
}

// DistinctMonths lists every month with at least one appearance, ascending.
func (idx *ShopIndex) DistinctMonths() []YearMonth {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.months)
}

// MarketName resolves a market id, falling back to UnknownMarketName.
func (idx *ShopIndex) MarketName(id string) string {
	if idx != nil {
		if name, ok := idx.names[id]; ok {
			return name
		}
	}
	return UnknownMarketName
}

// Markets returns the market list in the order it was loaded.
func (idx *ShopIndex) Markets() []Market {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.markets)
}

// HasMarket reports whether id is a listed market.
func (idx *ShopIndex) HasMarket(id string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.names[id]
	return ok
}

// Rejected returns how many records were dropped for having a bad date.
func (idx *ShopIndex) Rejected() int {
	if idx == nil {
		return 0
	}
	return idx.rejected
}
