package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottonscout/cotton-scraper/internal/registry"
)

func hmConfig() *registry.Config {
	return &registry.Config{
		Key:  "hm",
		Name: "H&M",
		BaseURLs: map[string]string{
			"UK": "https://www2.hm.com/en_gb",
		},
		CategoryPaths: map[string]string{
			"men": "/men/shop-by-product/view-all.html",
		},
	}
}

func asosConfig() *registry.Config {
	return &registry.Config{
		Key:  "asos",
		Name: "ASOS",
		BaseURLs: map[string]string{
			"UK": "https://www.asos.com",
		},
		CategoryPaths: map[string]string{
			"men": "/men/t-shirts-vests/cat/?cid=7616",
		},
		MaterialFilter:         "composition=100%25+Cotton",
		SupportsMaterialFilter: true,
	}
}

func TestHMListCategoryPage(t *testing.T) {
	listing := `<html><body>
		<article data-testid="productTile"><a href="/en_gb/productpage.1234567001.html">Tee</a></article>
		<article data-testid="productTile"><a href="/en_gb/productpage.7654321002.html">Shirt</a></article>
		<article data-testid="productTile"><a href="/en_gb/customer-service.html">Help</a></article>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www2.hm.com/en_gb/men/shop-by-product/view-all.html": listing,
	}}
	h := NewHM(hmConfig(), fetcher, discardLogger())

	urls, hasNext, err := h.ListCategoryPage(context.Background(), "UK", "men", 1)
	require.NoError(t, err)
	assert.False(t, hasNext)
	assert.Equal(t, []string{
		"https://www2.hm.com/en_gb/productpage.1234567001.html",
		"https://www2.hm.com/en_gb/productpage.7654321002.html",
	}, urls)
}

func TestHMListCategoryPageUnknownRegion(t *testing.T) {
	h := NewHM(hmConfig(), &stubFetcher{}, discardLogger())

	_, _, err := h.ListCategoryPage(context.Background(), "DE", "men", 1)

	var unknownErr *registry.UnknownRetailerError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "DE", unknownErr.Region)
}

func TestHMFetchDetails(t *testing.T) {
	page := `<html><body>
		<h1 data-testid="product-name">Regular Fit T-shirt</h1>
		<span data-testid="product-price">£8.99</span>
		<img data-testid="product-detail-main-image" src="https://image.hm.com/tee.jpg">
		<div data-testid="composition">100% Cotton</div>
		<div data-testid="color-name">White</div>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www2.hm.com/en_gb/productpage.1234567001.html": page,
	}}
	h := NewHM(hmConfig(), fetcher, discardLogger())

	details, err := h.FetchDetails(context.Background(), "UK", "https://www2.hm.com/en_gb/productpage.1234567001.html")
	require.NoError(t, err)

	assert.Equal(t, "Regular Fit T-shirt", details.Name)
	assert.Equal(t, "£8.99", details.PriceText)
	assert.Equal(t, "100% Cotton", details.Composition)
	assert.Equal(t, "White", details.Color)
}

func TestASOSCategoryURLCarriesMaterialFilter(t *testing.T) {
	a := NewASOS(asosConfig(), &stubFetcher{}, discardLogger())

	got, err := a.categoryURL("UK", "men")
	require.NoError(t, err)
	assert.Equal(t,
		"https://www.asos.com/men/t-shirts-vests/cat/?cid=7616&composition=100%25+Cotton",
		got)
}

func TestASOSListCategoryPage(t *testing.T) {
	listing := `<html><body>
		<article data-auto-id="productTile"><a href="/asos-design/tee/prd/203216097">Tee</a></article>
		<article data-auto-id="productTile"><a href="/topman/shirt/prd/204110331">Shirt</a></article>
		<a data-testid="pagination-next" href="?page=2">Next</a>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.asos.com/men/t-shirts-vests/cat/?cid=7616&composition=100%25+Cotton": listing,
	}}
	a := NewASOS(asosConfig(), fetcher, discardLogger())

	urls, hasNext, err := a.ListCategoryPage(context.Background(), "UK", "men", 1)
	require.NoError(t, err)
	assert.True(t, hasNext)
	assert.Equal(t, []string{
		"https://www.asos.com/asos-design/tee/prd/203216097",
		"https://www.asos.com/topman/shirt/prd/204110331",
	}, urls)
}

func TestASOSFetchDetails(t *testing.T) {
	page := `<html><body>
		<h1 data-testid="product-title">ASOS DESIGN relaxed t-shirt</h1>
		<span data-testid="current-price">£12.00</span>
		<img data-testid="hero-image" src="https://images.asos.com/tee.jpg">
		<div class="product-description">Main: 100% Cotton.</div>
		<div data-testid="productColour">Black</div>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.asos.com/asos-design/tee/prd/203216097": page,
	}}
	a := NewASOS(asosConfig(), fetcher, discardLogger())

	details, err := a.FetchDetails(context.Background(), "UK", "https://www.asos.com/asos-design/tee/prd/203216097")
	require.NoError(t, err)

	assert.Equal(t, "ASOS DESIGN relaxed t-shirt", details.Name)
	assert.Equal(t, "£12.00", details.PriceText)
	assert.Equal(t, "Main: 100% Cotton.", details.Composition)
	assert.Equal(t, "Black", details.Color)
}
