package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/app"
	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
	"github.com/klabast/wb-services/kitchencar-kalender/internal/scraper"
)

// ScrapeOptions are the resolved settings of one scrape run.
type ScrapeOptions struct {
	Config  *app.Config
	DataDir string
	Only    string
	Delay   time.Duration
}

// ParseScrapeArgs reads the scrape flags and the config file they name.
// -data and -delay override the config only when given.
func ParseScrapeArgs(args []string) (*ScrapeOptions, error) {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file (or CONFIG_PATH)")
	dataDir := fs.String("data", "", "Directory holding markets.json (default from config)")
	delay := fs.Duration("delay", 0, "Pause between market requests (default from config)")
	only := fs.String("market", "", "Scrape a single market id")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kitchencar-kalender scrape [OPTIONS]\n\n")
		fmt.Fprintf(fs.Output(), "Fetches the market pages and rewrites the market_info files.\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	opts := &ScrapeOptions{Config: cfg, DataDir: cfg.DataDir, Only: *only, Delay: cfg.Scraper.Delay}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			opts.DataDir = *dataDir
		case "delay":
			opts.Delay = *delay
		}
	})
	return opts, nil
}

// Scrape handles the scrape subcommand: it refreshes market_info_<id>.json
// for every market listed in markets.json.
func Scrape(args []string) {
	opts, err := ParseScrapeArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc := opts.Config.Scraper
	s, err := scraper.New(sc.BaseURL, sc.UserAgent, sc.Timeout)
	if err != nil {
		log.Fatalf("Failed to create scraper: %v", err)
	}

	saved, err := RunScrape(ctx, s, opts.DataDir, opts.Only, opts.Delay)
	if err != nil {
		log.Fatalf("Scrape failed: %v", err)
	}
	log.Printf("✅ Scrape finished: %d market files written", saved)
}

// MarketScraper produces the document of one market.
type MarketScraper interface {
	MarketInfo(ctx context.Context, marketID string) (*calendar.MarketInfo, error)
}

// RunScrape scrapes each listed market in turn and saves its document.
// A failing market is logged and skipped. It returns the number of files
// written.
func RunScrape(ctx context.Context, s MarketScraper, dataDir, only string, delay time.Duration) (int, error) {
	markets, err := app.ReadMarkets(filepath.Join(dataDir, app.MarketsFile))
	if err != nil {
		return 0, fmt.Errorf("read market list: %w", err)
	}
	log.Printf("Found %d markets", len(markets))

	saved, attempted := 0, false
	for _, m := range markets {
		if only != "" && m.ID != only {
			continue
		}
		if m.ID == "" {
			log.Printf("⚠️  Market %q has no id, skipping", m.Name)
			continue
		}

		// Be gentle with the upstream site.
		if attempted && delay > 0 {
			select {
			case <-ctx.Done():
				return saved, ctx.Err()
			case <-time.After(delay):
			}
		}

		attempted = true
		log.Printf("Scraping market %s (%s)", m.Name, m.ID)
		info, err := s.MarketInfo(ctx, m.ID)
		if err != nil {
			if ctx.Err() != nil {
				return saved, ctx.Err()
			}
			log.Printf("⚠️  Failed to scrape market %s: %v", m.ID, err)
			continue
		}

		if err := app.SaveMarketInfo(dataDir, info); err != nil {
			log.Printf("⚠️  Failed to save market %s: %v", m.ID, err)
			continue
		}
		saved++
		log.Printf("Saved %d shops for %s", len(info.ShopInfo), info.MarketName)
	}
	return saved, nil
}
