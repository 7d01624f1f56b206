package calendar

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultLoadWorkers bounds concurrent per-market fetches.
const DefaultLoadWorkers = 4

// FetchFunc retrieves the document of one market.
type FetchFunc func(ctx context.Context, marketID string) (*MarketInfo, error)

// PartialLoadWarning records a market whose document could not be used.
// The market contributes no appearances; loading continues.
type PartialLoadWarning struct {
	MarketID string
	Err      error
}

func (w *PartialLoadWarning) Error() string {
	return fmt.Sprintf("market %s: %v", w.MarketID, w.Err)
}

func (w *PartialLoadWarning) Unwrap() error {
	return w.Err
}

var errEmptyDocument = errors.New("empty market document")

// LoadAll fetches every market's document and builds the index.
// It returns once all fetches have finished. Failed fetches are reported
// as warnings instead of errors; only a cancelled context fails the load.
func LoadAll(ctx context.Context, markets []Market, fetch FetchFunc, workers int) (*ShopIndex, []*PartialLoadWarning, error) {
	if workers <= 0 {
		workers = DefaultLoadWorkers
	}

	infos := make([]*MarketInfo, len(markets))
	failures := make([]error, len(markets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range markets {
		g.Go(func() error {
			info, err := fetch(gctx, m.ID)
			switch {
			case err != nil:
				failures[i] = err
			case info == nil:
				failures[i] = errEmptyDocument
			default:
				infos[i] = info
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("load markets: %w", err)
	}

	var warnings []*PartialLoadWarning
	for i, err := range failures {
		if err != nil {
			warnings = append(warnings, &PartialLoadWarning{MarketID: markets[i].ID, Err: err})
		}
	}
	return BuildIndex(markets, infos), warnings, nil
}
