package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Product is a single verified 100% cotton item found on a retailer site.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	URL       string    `json:"url"`
	ImageURL  string    `json:"image_url,omitempty"`
	Gender    string    `json:"gender"`
	Category  string    `json:"category"`
	Material  string    `json:"material"`
	RawText   string    `json:"raw_composition"`
	Color     string    `json:"color,omitempty"`
	Sizes     []string  `json:"sizes"`
	Source    string    `json:"source"`
	Region    string    `json:"region"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Snapshot is the immutable result set of one completed or stopped job.
type Snapshot struct {
	ScrapedAt     time.Time  `json:"scraped_at"`
	TotalProducts int        `json:"total_products"`
	Products      []*Product `json:"products"`
}

// SnapshotInfo describes a persisted snapshot without loading its products.
type SnapshotInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ProductID derives a stable identifier from the retailer key and the
// normalized product URL, so re-scraping the same item yields the same ID.
func ProductID(source, rawurl string) string {
	sum := md5.Sum([]byte(source + ":" + NormalizeURL(rawurl)))
	return hex.EncodeToString(sum[:])[:12]
}

var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"gclid", "fbclid", "ref",
}

// NormalizeURL strips fragments, tracking parameters and trailing slashes so
// that cosmetic URL variants of the same product dedup to one key.
func NormalizeURL(rawurl string) string {
	u, err := url.Parse(strings.TrimSpace(rawurl))
	if err != nil {
		return strings.TrimRight(strings.TrimSpace(rawurl), "/")
	}

	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)

	if u.RawQuery != "" {
		q := u.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		u.RawQuery = q.Encode()
	}

	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

func (p *Product) Validate() []string {
	var problems []string

	if p.Name == "" {
		problems = append(problems, "name is required")
	}
	if p.URL == "" {
		problems = append(problems, "url is required")
	}
	if p.Price < 0 {
		problems = append(problems, fmt.Sprintf("price must be non-negative, got %v", p.Price))
	}
	if p.RawText == "" {
		problems = append(problems, "raw composition is required")
	}

	return problems
}
