package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

// firstText returns the trimmed text of the first selector that matches.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := CleanText(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstAttr returns the named attribute of the first selector that matches.
func firstAttr(doc *goquery.Document, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if value, ok := doc.Find(sel).First().Attr(attr); ok && value != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

var skipHrefFragments = []string{"javascript:", "mailto:", "#", "cart", "wishlist", "account"}

// collectLinks gathers candidate product links matching any selector,
// absolutized against base, deduplicated in document order.
func collectLinks(doc *goquery.Document, base string, selectors []string) []string {
	seen := make(map[string]struct{})
	var links []string

	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				return
			}
			href = strings.TrimSpace(href)

			lower := strings.ToLower(href)
			for _, skip := range skipHrefFragments {
				if strings.Contains(lower, skip) {
					return
				}
			}

			abs := absoluteURL(base, href)
			if abs == "" {
				return
			}
			if _, dup := seen[abs]; dup {
				return
			}
			seen[abs] = struct{}{}
			links = append(links, abs)
		})
	}

	return links
}

func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

var nextPageSelectors = []string{
	`a[rel="next"]`,
	"li.next a",
	"a.pagination-next",
	`[data-testid="pagination-next"]`,
	`a[aria-label="Next"]`,
}

// hasNextPage checks common pagination markers for a further page.
func hasNextPage(doc *goquery.Document) bool {
	for _, sel := range nextPageSelectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// withPageParam sets the page query parameter on a category URL, leaving
// page 1 as the bare URL.
func withPageParam(rawurl string, page int) string {
	if page <= 1 {
		return rawurl
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return rawurl
	}
	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String()
}

var compositionSelectors = []string{
	`[data-testid="composition"]`,
	`[data-testid="product-composition"]`,
	`[data-testid="material"]`,
	".composition",
	".material",
	".fabric",
	"#composition",
	"#material",
	".product-details-list",
	".product-details",
	".product-description",
	".product-info",
	"[class*='composition']",
	"[class*='material']",
	"[id*='composition']",
	"[id*='material']",
}

var compositionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)composition[:\s]*([^<>]*100\s*%[^<>]*cotton[^<>]*)`),
	regexp.MustCompile(`(?i)material[:\s]*([^<>]*100\s*%[^<>]*cotton[^<>]*)`),
	regexp.MustCompile(`(?i)fabric[:\s]*([^<>]*100\s*%[^<>]*cotton[^<>]*)`),
	regexp.MustCompile(`(?i)(100\s*%\s*organic\s*cotton)`),
	regexp.MustCompile(`(?i)(100\s*%\s*bci\s*cotton)`),
	regexp.MustCompile(`(?i)(100\s*%\s*cotton)`),
	regexp.MustCompile(`(?i)(pure\s*cotton)`),
	regexp.MustCompile(`(?i)(all\s*cotton)`),
}

// extractComposition pulls the fabric composition text from a product page:
// structured selectors first, then pattern matching over the page text.
func extractComposition(doc *goquery.Document) string {
	for _, sel := range compositionSelectors {
		text := CleanText(doc.Find(sel).First().Text())
		if text != "" && strings.Contains(strings.ToLower(text), "cotton") {
			return text
		}
	}

	pageText := doc.Text()
	for _, pattern := range compositionPatterns {
		if match := pattern.FindStringSubmatch(pageText); len(match) > 1 {
			return CleanText(match[1])
		}
	}

	return ""
}

var sizeSelectors = []string{
	".size-selector button:not([disabled])",
	".size-option:not(.disabled)",
	`[data-testid="size"] option`,
	`select[name*="size"] option`,
}

// extractSizes collects the available sizes, first matching selector wins.
func extractSizes(doc *goquery.Document) []string {
	for _, sel := range sizeSelectors {
		var sizes []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := CleanText(s.Text())
			if text != "" && !strings.Contains(strings.ToLower(text), "select") {
				sizes = append(sizes, text)
			}
		})
		if len(sizes) > 0 {
			return sizes
		}
	}
	return nil
}
