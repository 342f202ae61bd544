package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/cottonscout/cotton-scraper/internal/fetch"
	"github.com/cottonscout/cotton-scraper/internal/registry"
)

// productLinkSelectors are tried in order against category pages of retailers
// we have no dedicated scraper for. Specific product-card markup first, broad
// href patterns last.
var productLinkSelectors = []string{
	`a[data-testid="product-link"]`,
	"a.product-link",
	"a.product-card",
	".product-item a",
	".product-tile a",
	".product-card a",
	"article a[href*='/product']",
	"a[href*='/product/']",
	"a[href*='/products/']",
	"a[href*='/p/']",
	"a[href*='/prod']",
	"a[href*='/item/']",
}

var nameSelectors = []string{
	`h1[data-testid="product-name"]`,
	"h1.product-name",
	"h1.product-title",
	".product-info h1",
	"h1",
}

var priceSelectors = []string{
	`[data-testid="product-price"]`,
	".product-price",
	".price-current",
	".price",
	`[class*="price"]`,
	`[itemprop="price"]`,
}

var imageSelectors = []string{
	`img[data-testid="product-image"]`,
	".product-image img",
	".product-gallery img",
	`img[itemprop="image"]`,
	".product-media img",
}

var colorSelectors = []string{
	`[data-testid="product-color"]`,
	".product-color",
	".selected-color",
	`[class*="colour"]`,
	`[class*="color-name"]`,
}

// Generic is the config-driven scraper. It serves every retailer that has no
// dedicated implementation: category URLs come from the retailer config and
// extraction runs over layered selector lists that cover common storefront
// markup.
type Generic struct {
	cfg     *registry.Config
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewGeneric(cfg *registry.Config, fetcher fetch.Fetcher, logger *slog.Logger) *Generic {
	return &Generic{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With("component", "scraper", "retailer", cfg.Key),
	}
}

func (g *Generic) Key() string  { return g.cfg.Key }
func (g *Generic) Name() string { return g.cfg.Name }

func (g *Generic) BaseURL(region string) (string, error) {
	base, ok := g.cfg.BaseURLs[region]
	if !ok {
		return "", &registry.UnknownRetailerError{Region: region, Key: g.cfg.Key}
	}
	return base, nil
}

// CategoryURL builds the listing URL for a gender in a region, appending the
// retailer's material filter when its storefront supports server-side
// composition filtering.
func (g *Generic) CategoryURL(region, gender string) (string, error) {
	base, err := g.BaseURL(region)
	if err != nil {
		return "", err
	}
	path, ok := g.cfg.CategoryPaths[gender]
	if !ok {
		return "", fmt.Errorf("retailer %s has no category path for gender %q", g.cfg.Key, gender)
	}

	full := strings.TrimRight(base, "/") + path
	if g.cfg.SupportsMaterialFilter && g.cfg.MaterialFilter != "" {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + g.cfg.MaterialFilter
	}
	return full, nil
}

func (g *Generic) ListCategoryPage(ctx context.Context, region, gender string, page int) ([]string, bool, error) {
	categoryURL, err := g.CategoryURL(region, gender)
	if err != nil {
		return nil, false, err
	}
	pageURL := withPageParam(categoryURL, page)

	html, err := g.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, false, fmt.Errorf("fetch category page %s: %w", pageURL, err)
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, false, err
	}

	base, _ := g.BaseURL(region)
	links := g.filterProductLinks(collectLinks(doc, base, productLinkSelectors), base)

	g.logger.Debug("category page listed",
		"region", region, "gender", gender, "page", page, "links", len(links))

	return links, hasNextPage(doc), nil
}

// filterProductLinks keeps only links on the retailer's own host that look
// like product pages rather than navigation.
func (g *Generic) filterProductLinks(links []string, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return links
	}

	var kept []string
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		if u.Host != "" && !strings.HasSuffix(u.Host, strings.TrimPrefix(baseURL.Host, "www.")) {
			continue
		}
		kept = append(kept, link)
	}
	return kept
}

func (g *Generic) FetchDetails(ctx context.Context, region, rawurl string) (*Details, error) {
	html, err := g.fetcher.FetchHTML(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("fetch product page %s: %w", rawurl, err)
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	details := &Details{
		Name:        firstText(doc, nameSelectors...),
		Brand:       g.cfg.Name,
		PriceText:   firstText(doc, priceSelectors...),
		ImageURL:    firstAttr(doc, "src", imageSelectors...),
		Composition: extractComposition(doc),
		Color:       firstText(doc, colorSelectors...),
		Sizes:       extractSizes(doc),
	}

	if details.Name == "" {
		return nil, fmt.Errorf("no product name found at %s", rawurl)
	}
	return details, nil
}
