package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottonscout/cotton-scraper/internal/fetch"
	"github.com/cottonscout/cotton-scraper/internal/registry"
)

// ASOS is the dedicated ASOS scraper. ASOS supports server-side composition
// filtering, so its category URLs carry the retailer's material filter and
// most listed products are already 100% cotton before detail fetching.
type ASOS struct {
	cfg     *registry.Config
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewASOS(cfg *registry.Config, fetcher fetch.Fetcher, logger *slog.Logger) *ASOS {
	return &ASOS{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With("component", "scraper", "retailer", cfg.Key),
	}
}

func (a *ASOS) Key() string  { return a.cfg.Key }
func (a *ASOS) Name() string { return a.cfg.Name }

func (a *ASOS) BaseURL(region string) (string, error) {
	base, ok := a.cfg.BaseURLs[region]
	if !ok {
		return "", &registry.UnknownRetailerError{Region: region, Key: a.cfg.Key}
	}
	return base, nil
}

func (a *ASOS) categoryURL(region, gender string) (string, error) {
	base, err := a.BaseURL(region)
	if err != nil {
		return "", err
	}
	path, ok := a.cfg.CategoryPaths[gender]
	if !ok {
		return "", fmt.Errorf("retailer %s has no category path for gender %q", a.cfg.Key, gender)
	}

	full := strings.TrimRight(base, "/") + path
	if a.cfg.MaterialFilter != "" {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + a.cfg.MaterialFilter
	}
	return full, nil
}

var asosTileSelectors = []string{
	`article[data-auto-id="productTile"] a`,
	`[data-auto-id="productTile"] a`,
	`a[data-auto-id="productTileLink"]`,
	"a[href*='/prd/']",
}

func (a *ASOS) ListCategoryPage(ctx context.Context, region, gender string, page int) ([]string, bool, error) {
	categoryURL, err := a.categoryURL(region, gender)
	if err != nil {
		return nil, false, err
	}
	pageURL := withPageParam(categoryURL, page)

	html, err := a.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, false, fmt.Errorf("fetch category page %s: %w", pageURL, err)
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, false, err
	}

	base, _ := a.BaseURL(region)
	var links []string
	for _, link := range collectLinks(doc, base, asosTileSelectors) {
		if strings.Contains(link, "/prd/") {
			links = append(links, link)
		}
	}

	a.logger.Debug("category page listed",
		"region", region, "gender", gender, "page", page, "links", len(links))

	return links, hasNextPage(doc), nil
}

func (a *ASOS) FetchDetails(ctx context.Context, region, rawurl string) (*Details, error) {
	html, err := a.fetcher.FetchHTML(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("fetch product page %s: %w", rawurl, err)
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	details := &Details{
		Name: firstText(doc,
			`h1[data-testid="product-title"]`,
			"h1.product-hero",
			"h1"),
		Brand: a.cfg.Name,
		PriceText: firstText(doc,
			`[data-testid="current-price"]`,
			`[data-testid="product-price"]`,
			".current-price",
			`[class*="price"]`),
		ImageURL: firstAttr(doc, "src",
			`img[data-testid="hero-image"]`,
			".gallery-image img",
			".product-carousel img"),
		Composition: extractComposition(doc),
		Color: firstText(doc,
			`[data-testid="productColour"]`,
			".product-colour"),
		Sizes: extractSizes(doc),
	}

	if details.Name == "" {
		return nil, fmt.Errorf("no product name found at %s", rawurl)
	}
	return details, nil
}
