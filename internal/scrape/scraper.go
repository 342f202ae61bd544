// Package scrape extracts candidate product URLs and per-product details
// from retailer websites. Two variants implement the Scraper contract: the
// config-driven Generic scraper and the hand-written dedicated scrapers for
// H&M and ASOS. The set is closed; New enumerates every variant.
package scrape

import (
	"context"
	"log/slog"

	"github.com/cottonscout/cotton-scraper/internal/fetch"
	"github.com/cottonscout/cotton-scraper/internal/registry"
)

// Details holds the raw attributes pulled from one product page. The
// composition text is the input to material detection; everything else is
// carried through into the persisted product.
type Details struct {
	Name        string
	Brand       string
	PriceText   string
	ImageURL    string
	Composition string
	Color       string
	Sizes       []string
}

// Scraper is the per-retailer extraction capability.
//
// ListCategoryPage is the paginated category listing: it returns the
// candidate product URLs on one page and whether a further page exists.
// The sequence is restartable by calling again from page 1.
type Scraper interface {
	Key() string
	Name() string
	BaseURL(region string) (string, error)
	ListCategoryPage(ctx context.Context, region, gender string, page int) (urls []string, hasNext bool, err error)
	FetchDetails(ctx context.Context, region, url string) (*Details, error)
}

// Factory resolves a retailer config to its scraper implementation.
type Factory func(cfg *registry.Config) Scraper

// NewFactory returns the production factory over the given fetcher. Dedicated
// scrapers exist for the retailers whose markup we maintain selectors for;
// every other config is served by the Generic variant.
func NewFactory(fetcher fetch.Fetcher, logger *slog.Logger) Factory {
	return func(cfg *registry.Config) Scraper {
		switch cfg.Key {
		case "hm":
			return NewHM(cfg, fetcher, logger)
		case "asos":
			return NewASOS(cfg, fetcher, logger)
		default:
			return NewGeneric(cfg, fetcher, logger)
		}
	}
}
