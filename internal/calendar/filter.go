package calendar

// FilterByMarket keeps the appearances of one market, preserving order.
// An empty marketID selects every market and returns shops unchanged.
func FilterByMarket(shops []ShopAppearance, marketID string) []ShopAppearance {
	if marketID == "" {
		return shops
	}
	filtered := make([]ShopAppearance, 0, len(shops))
	for _, s := range shops {
		if s.MarketID == marketID {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// groupByDate buckets appearances by date, keeping their relative order.
func groupByDate(shops []ShopAppearance) map[DateKey][]ShopAppearance {
	grouped := make(map[DateKey][]ShopAppearance)
	for _, s := range shops {
		grouped[s.Date] = append(grouped[s.Date], s)
	}
	return grouped
}
