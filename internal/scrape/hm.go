package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottonscout/cotton-scraper/internal/fetch"
	"github.com/cottonscout/cotton-scraper/internal/registry"
)

// HM is the dedicated H&M scraper. H&M renders product tiles with stable
// data-testid markup and lists composition under a details accordion, so
// targeted selectors beat the generic fallbacks.
type HM struct {
	cfg     *registry.Config
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewHM(cfg *registry.Config, fetcher fetch.Fetcher, logger *slog.Logger) *HM {
	return &HM{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With("component", "scraper", "retailer", cfg.Key),
	}
}

func (h *HM) Key() string  { return h.cfg.Key }
func (h *HM) Name() string { return h.cfg.Name }

func (h *HM) BaseURL(region string) (string, error) {
	base, ok := h.cfg.BaseURLs[region]
	if !ok {
		return "", &registry.UnknownRetailerError{Region: region, Key: h.cfg.Key}
	}
	return base, nil
}

var hmTileSelectors = []string{
	`article[data-testid="productTile"] a`,
	`li[data-testid="product-item"] a`,
	"a.item-link",
	"a[href*='productpage']",
}

func (h *HM) ListCategoryPage(ctx context.Context, region, gender string, page int) ([]string, bool, error) {
	base, err := h.BaseURL(region)
	if err != nil {
		return nil, false, err
	}
	path, ok := h.cfg.CategoryPaths[gender]
	if !ok {
		return nil, false, fmt.Errorf("retailer %s has no category path for gender %q", h.cfg.Key, gender)
	}

	pageURL := withPageParam(strings.TrimRight(base, "/")+path, page)

	html, err := h.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, false, fmt.Errorf("fetch category page %s: %w", pageURL, err)
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, false, err
	}

	var links []string
	for _, link := range collectLinks(doc, base, hmTileSelectors) {
		if strings.Contains(link, "productpage") || strings.Contains(link, "/product") {
			links = append(links, link)
		}
	}

	h.logger.Debug("category page listed",
		"region", region, "gender", gender, "page", page, "links", len(links))

	return links, hasNextPage(doc), nil
}

func (h *HM) FetchDetails(ctx context.Context, region, rawurl string) (*Details, error) {
	html, err := h.fetcher.FetchHTML(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("fetch product page %s: %w", rawurl, err)
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	details := &Details{
		Name: firstText(doc,
			`h1[data-testid="product-name"]`,
			"h1.product-item-headline",
			"h1"),
		Brand: h.cfg.Name,
		PriceText: firstText(doc,
			`span[data-testid="product-price"]`,
			".price-value",
			`[class*="price"]`),
		ImageURL: firstAttr(doc, "src",
			`img[data-testid="product-detail-main-image"]`,
			".product-detail-main-image-container img",
			".product-images img"),
		Composition: extractComposition(doc),
		Color: firstText(doc,
			`[data-testid="color-name"]`,
			".product-input-label"),
		Sizes: extractSizes(doc),
	}

	if details.Name == "" {
		return nil, fmt.Errorf("no product name found at %s", rawurl)
	}
	return details, nil
}
