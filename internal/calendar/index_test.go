package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleIndex() *ShopIndex {
	markets := []Market{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	infos := []*MarketInfo{
		{
			MarketID:   "a",
			MarketName: "A",
			ShopInfo: []ShopRecord{
				{Name: "Curry Van", Menu: "curry", Hours: "11:00-14:00", Date: "2024-03-05"},
				{Name: "Crepe Car", Menu: "crepe", Hours: "11:00-15:00", Date: "2024-03-05"},
				{Name: "Taco Truck", Menu: "tacos", Hours: "17:00-20:00", Date: "2024-04-01"},
			},
		},
		{
			MarketID:   "b",
			MarketName: "B",
			ShopInfo: []ShopRecord{
				{Name: "Kebab", Menu: "kebab", Hours: "11:00-14:00", Date: "2024-3-5", URL: "https://example.com/k"},
				{Name: "Broken", Menu: "不明", Hours: "不明", Date: "不明"},
				{Name: "Ramen", Menu: "ramen", Hours: "18:00-21:00", Date: "2023-12-24"},
			},
		},
	}
	return BuildIndex(markets, infos)
}

func TestBuildIndexByDate(t *testing.T) {
	idx := sampleIndex()

	got := idx.ByDate("2024-03-05")
	require.Len(t, got, 3)
	require.Equal(t, "Curry Van", got[0].Name)
	require.Equal(t, "Crepe Car", got[1].Name)
	require.Equal(t, "Kebab", got[2].Name)
	require.Equal(t, "b", got[2].MarketID)
	require.Equal(t, "B", got[2].MarketName)
	require.Equal(t, DateKey("2024-03-05"), got[2].Date)

	require.Empty(t, idx.ByDate("2024-03-06"))
}

func TestBuildIndexAllKeepsLoadOrder(t *testing.T) {
	idx := sampleIndex()

	names := make([]string, 0, idx.Len())
	for _, s := range idx.All() {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"Curry Van", "Crepe Car", "Taco Truck", "Kebab", "Ramen"}, names)
	require.Equal(t, 1, idx.Rejected())
}

func TestBuildIndexAllIsACopy(t *testing.T) {
	idx := sampleIndex()
	all := idx.All()
	all[0].Name = "changed"
	require.Equal(t, "Curry Van", idx.All()[0].Name)
}

func TestBuildIndexToleratesMissingMarket(t *testing.T) {
	markets := []Market{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	infos := []*MarketInfo{
		{MarketID: "a", MarketName: "A", ShopInfo: []ShopRecord{{Name: "x", Date: "2024-03-05"}}},
		nil,
	}

	idx := BuildIndex(markets, infos)
	require.Equal(t, 1, idx.Len())
	for _, s := range idx.All() {
		require.NotEqual(t, "b", s.MarketID)
	}
	require.Equal(t, "B", idx.MarketName("b"))
}

func TestDistinctMonths(t *testing.T) {
	idx := sampleIndex()
	require.Equal(t, []YearMonth{
		{2023, time.December},
		{2024, time.March},
		{2024, time.April},
	}, idx.DistinctMonths())
}

func TestMarketName(t *testing.T) {
	idx := sampleIndex()
	require.Equal(t, "A", idx.MarketName("a"))
	require.Equal(t, UnknownMarketName, idx.MarketName("zzz"))
	require.True(t, idx.HasMarket("b"))
	require.False(t, idx.HasMarket("zzz"))

	var empty *ShopIndex
	require.Equal(t, UnknownMarketName, empty.MarketName("a"))
	require.Zero(t, empty.Len())
}

func TestFilterByMarket(t *testing.T) {
	all := sampleIndex().All()

	require.Equal(t, all, FilterByMarket(all, ""))

	onlyA := FilterByMarket(all, "a")
	require.Len(t, onlyA, 3)
	for _, s := range onlyA {
		require.Equal(t, "a", s.MarketID)
	}
	require.Equal(t, []string{"Curry Van", "Crepe Car", "Taco Truck"}, []string{onlyA[0].Name, onlyA[1].Name, onlyA[2].Name})

	require.Equal(t, onlyA, FilterByMarket(onlyA, "a"))
	require.Empty(t, FilterByMarket(all, "nope"))
}
