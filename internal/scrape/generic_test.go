package scrape

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottonscout/cotton-scraper/internal/registry"
)

// stubFetcher maps URLs to canned HTML.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (s *stubFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.calls = append(s.calls, url)
	html, ok := s.pages[url]
	if !ok {
		return "", errors.New("no stub for " + url)
	}
	return html, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *registry.Config {
	return &registry.Config{
		Key:  "shopco",
		Name: "ShopCo",
		BaseURLs: map[string]string{
			"UK": "https://www.shopco.co.uk",
		},
		CategoryPaths: map[string]string{
			"men": "/men/clothing",
		},
	}
}

func TestGenericCategoryURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *registry.Config
		region  string
		gender  string
		want    string
		wantErr bool
	}{
		{
			name:   "plain category",
			cfg:    testConfig(),
			region: "UK",
			gender: "men",
			want:   "https://www.shopco.co.uk/men/clothing",
		},
		{
			name: "material filter appended when supported",
			cfg: &registry.Config{
				Key:                    "shopco",
				BaseURLs:               map[string]string{"UK": "https://www.shopco.co.uk"},
				CategoryPaths:          map[string]string{"men": "/men/clothing"},
				MaterialFilter:         "composition=100%25+Cotton",
				SupportsMaterialFilter: true,
			},
			region: "UK",
			gender: "men",
			want:   "https://www.shopco.co.uk/men/clothing?composition=100%25+Cotton",
		},
		{
			name: "material filter ignored when unsupported",
			cfg: &registry.Config{
				Key:            "shopco",
				BaseURLs:       map[string]string{"UK": "https://www.shopco.co.uk"},
				CategoryPaths:  map[string]string{"men": "/men/clothing"},
				MaterialFilter: "composition=100%25+Cotton",
			},
			region: "UK",
			gender: "men",
			want:   "https://www.shopco.co.uk/men/clothing",
		},
		{
			name:    "unknown region",
			cfg:     testConfig(),
			region:  "USA",
			gender:  "men",
			wantErr: true,
		},
		{
			name:    "unknown gender",
			cfg:     testConfig(),
			region:  "UK",
			gender:  "kids",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGeneric(tt.cfg, &stubFetcher{}, discardLogger())
			got, err := g.CategoryURL(tt.region, tt.gender)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenericListCategoryPage(t *testing.T) {
	listing := `<html><body>
		<div class="product-item"><a href="/product/cotton-tee">Cotton Tee</a></div>
		<div class="product-item"><a href="/product/denim-jeans">Denim Jeans</a></div>
		<div class="product-item"><a href="/product/cotton-tee">Cotton Tee dup</a></div>
		<div class="product-item"><a href="javascript:void(0)">Junk</a></div>
		<div class="product-item"><a href="https://ads.example.net/product/elsewhere">Offsite</a></div>
		<a rel="next" href="/men/clothing?page=2">Next</a>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.shopco.co.uk/men/clothing": listing,
	}}
	g := NewGeneric(testConfig(), fetcher, discardLogger())

	urls, hasNext, err := g.ListCategoryPage(context.Background(), "UK", "men", 1)
	require.NoError(t, err)
	assert.True(t, hasNext)
	assert.Equal(t, []string{
		"https://www.shopco.co.uk/product/cotton-tee",
		"https://www.shopco.co.uk/product/denim-jeans",
	}, urls)
}

func TestGenericListCategoryPagePagination(t *testing.T) {
	lastPage := `<html><body>
		<div class="product-item"><a href="/product/final-shirt">Final Shirt</a></div>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.shopco.co.uk/men/clothing?page=3": lastPage,
	}}
	g := NewGeneric(testConfig(), fetcher, discardLogger())

	urls, hasNext, err := g.ListCategoryPage(context.Background(), "UK", "men", 3)
	require.NoError(t, err)
	assert.False(t, hasNext)
	assert.Len(t, urls, 1)
}

func TestGenericListCategoryPageFetchError(t *testing.T) {
	g := NewGeneric(testConfig(), &stubFetcher{}, discardLogger())

	_, _, err := g.ListCategoryPage(context.Background(), "UK", "men", 1)
	assert.Error(t, err)
}

func TestGenericFetchDetails(t *testing.T) {
	page := `<html><body>
		<h1 class="product-name">Organic Cotton Tee</h1>
		<span class="product-price">£19.99</span>
		<div class="product-image"><img src="https://img.shopco.co.uk/tee.jpg"></div>
		<div class="composition">100% Organic Cotton</div>
		<div class="product-color">Navy</div>
		<div class="size-selector">
			<button>S</button>
			<button>M</button>
			<button disabled>L</button>
		</div>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.shopco.co.uk/product/cotton-tee": page,
	}}
	g := NewGeneric(testConfig(), fetcher, discardLogger())

	details, err := g.FetchDetails(context.Background(), "UK", "https://www.shopco.co.uk/product/cotton-tee")
	require.NoError(t, err)

	assert.Equal(t, "Organic Cotton Tee", details.Name)
	assert.Equal(t, "ShopCo", details.Brand)
	assert.Equal(t, "£19.99", details.PriceText)
	assert.Equal(t, "https://img.shopco.co.uk/tee.jpg", details.ImageURL)
	assert.Equal(t, "100% Organic Cotton", details.Composition)
	assert.Equal(t, "Navy", details.Color)
	assert.Equal(t, []string{"S", "M"}, details.Sizes)
}

func TestGenericFetchDetailsCompositionFallback(t *testing.T) {
	// No structured composition element; the text pattern fallback applies.
	page := `<html><body>
		<h1>Plain Tee</h1>
		<p>Soft everyday tee. Made from 100% cotton for comfort.</p>
	</body></html>`

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.shopco.co.uk/product/plain-tee": page,
	}}
	g := NewGeneric(testConfig(), fetcher, discardLogger())

	details, err := g.FetchDetails(context.Background(), "UK", "https://www.shopco.co.uk/product/plain-tee")
	require.NoError(t, err)
	assert.Equal(t, "100% cotton", details.Composition)
}

func TestGenericFetchDetailsMissingName(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.shopco.co.uk/product/empty": "<html><body></body></html>",
	}}
	g := NewGeneric(testConfig(), fetcher, discardLogger())

	_, err := g.FetchDetails(context.Background(), "UK", "https://www.shopco.co.uk/product/empty")
	assert.Error(t, err)
}

func TestCleanPrice(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"£29.99", 29.99, true},
		{"$15.00", 15, true},
		{"€ 19,99", 19.99, true},
		{"From £29.99", 29.99, true},
		{"1,299.00", 1299, true},
		{"", 0, false},
		{"Sold out", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CleanPrice(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestCategorizeProduct(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"Classic Crew Neck T-Shirt", "", "t-shirts"},
		{"Slim Fit Oxford Shirt", "", "shirts"},
		{"Stonewash Denim", "/men/jeans/stonewash", "jeans"},
		{"Midi Wrap Dress", "", "dresses"},
		{"Cable Knit Jumper", "", "sweaters"},
		{"Mystery Item", "/products/12345", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeProduct(tt.name, tt.url))
		})
	}
}

func TestFactorySelection(t *testing.T) {
	factory := NewFactory(&stubFetcher{}, discardLogger())

	hm := factory(&registry.Config{Key: "hm"})
	assert.IsType(t, &HM{}, hm)

	asos := factory(&registry.Config{Key: "asos"})
	assert.IsType(t, &ASOS{}, asos)

	other := factory(&registry.Config{Key: "uniqlo"})
	assert.IsType(t, &Generic{}, other)
}
