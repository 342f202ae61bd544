package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cottonscout/cotton-scraper/internal/events"
	"github.com/cottonscout/cotton-scraper/internal/material"
	"github.com/cottonscout/cotton-scraper/internal/metrics"
	"github.com/cottonscout/cotton-scraper/internal/models"
	"github.com/cottonscout/cotton-scraper/internal/ratelimit"
	"github.com/cottonscout/cotton-scraper/internal/registry"
	"github.com/cottonscout/cotton-scraper/internal/scrape"
	"github.com/cottonscout/cotton-scraper/internal/status"
	"github.com/cottonscout/cotton-scraper/internal/store"
)

// ErrAllRetailersFailed marks a run in which not a single retailer task
// finished. One surviving retailer keeps the run alive.
var ErrAllRetailersFailed = errors.New("all retailer tasks failed")

// Coordinator fans a run out across retailers: one goroutine per retailer,
// strictly sequential requests within each, paced by the retailer's jitter
// limiter. Cancellation is cooperative and checked between requests.
type Coordinator struct {
	Registry  *registry.Registry
	Factory   scrape.Factory
	Detector  *material.Detector
	Store     *store.Store
	Reporter  *status.Reporter
	Publisher *events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// MaxPages caps category pagination per gender. DetailAttempts bounds
	// fetches of one product page; RetryDelay scales the backoff between
	// attempts. MaxProducts caps products per retailer, 0 means unlimited.
	MaxPages       int
	DetailAttempts int
	RetryDelay     time.Duration
	MaxProducts    int

	// LimiterFor is overridable so tests run without real delays.
	LimiterFor func(cfg *registry.Config) ratelimit.Limiter
}

func (c *Coordinator) limiter(cfg *registry.Config) ratelimit.Limiter {
	if c.LimiterFor != nil {
		return c.LimiterFor(cfg)
	}
	return ratelimit.NewJitterLimiter(cfg.MinDelay, cfg.MaxDelay)
}

// Run executes the retailer tasks and blocks until all finish or ctx is
// cancelled. It returns ErrAllRetailersFailed only when every task failed;
// individual failures are isolated and logged.
func (c *Coordinator) Run(ctx context.Context, jobID, region string, configs []*registry.Config, genders []string) error {
	var wg sync.WaitGroup
	failures := make([]error, len(configs))

	for i, cfg := range configs {
		wg.Add(1)
		go func(i int, cfg *registry.Config) {
			defer wg.Done()
			failures[i] = c.runRetailer(ctx, jobID, region, cfg, genders)
		}(i, cfg)
	}
	wg.Wait()

	failed := 0
	for i, err := range failures {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		failed++
		c.Logger.Error("retailer task failed",
			"job_id", jobID, "retailer", configs[i].Key, "error", err)
	}

	if failed == len(configs) && failed > 0 && ctx.Err() == nil {
		return ErrAllRetailersFailed
	}
	return nil
}

// runRetailer walks every gender's category pages for one retailer. A
// listing failure skips to the next gender; the task as a whole fails only
// when no page of any gender could be listed.
func (c *Coordinator) runRetailer(ctx context.Context, jobID, region string, cfg *registry.Config, genders []string) error {
	scraper := c.Factory(cfg)
	limiter := c.limiter(cfg)
	logger := c.Logger.With("job_id", jobID, "retailer", cfg.Key)

	c.Reporter.RetailerStarted(cfg.Key)
	c.Publisher.Publish(ctx, events.EventRetailerStarted, jobID, map[string]any{"retailer": cfg.Key})

	anyPageListed := false
	var lastErr error
	collected := 0

	for gi, gender := range genders {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageListed, n, err := c.scrapeGender(ctx, scraper, limiter, logger, region, cfg, gender, gi, len(genders))
		collected += n
		if pageListed {
			anyPageListed = true
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			lastErr = err
			logger.Warn("gender skipped", "gender", gender, "error", err)
			c.Reporter.AppendLog("warn", fmt.Sprintf("%s: skipped %s: %v", cfg.Key, gender, err))
		}
		c.Reporter.RetailerProgress(cfg.Key, float64(gi+1)/float64(len(genders)))

		if c.MaxProducts > 0 && collected >= c.MaxProducts {
			logger.Info("retailer product cap reached", "collected", collected)
			break
		}
	}

	if !anyPageListed && lastErr != nil {
		c.Reporter.RetailerFailed(cfg.Key, lastErr)
		c.Metrics.RetailerFailures.WithLabelValues(cfg.Key).Inc()
		c.Publisher.Publish(ctx, events.EventRetailerFailed, jobID, map[string]any{
			"retailer": cfg.Key, "error": lastErr.Error(),
		})
		return lastErr
	}

	c.Reporter.RetailerCompleted(cfg.Key)
	c.Publisher.Publish(ctx, events.EventRetailerDone, jobID, map[string]any{
		"retailer": cfg.Key, "products": collected,
	})
	logger.Info("retailer task finished", "products", collected)
	return nil
}

// scrapeGender pages through one gender's category listing. It reports
// whether at least one page was listed and how many products were stored.
func (c *Coordinator) scrapeGender(ctx context.Context, scraper scrape.Scraper, limiter ratelimit.Limiter, logger *slog.Logger, region string, cfg *registry.Config, gender string, genderIdx, genderCount int) (bool, int, error) {
	pageListed := false
	collected := 0

	for page := 1; page <= c.MaxPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return pageListed, collected, err
		}

		urls, hasNext, err := c.listWithRetry(ctx, scraper, limiter, region, cfg.Key, gender, page)
		if err != nil {
			return pageListed, collected, err
		}
		pageListed = true
		c.Reporter.PageScraped(cfg.Key)
		c.Metrics.PagesScraped.WithLabelValues(cfg.Key).Inc()

		for _, url := range urls {
			if err := ctx.Err(); err != nil {
				return pageListed, collected, err
			}
			if err := limiter.Wait(ctx); err != nil {
				return pageListed, collected, err
			}

			product, err := c.fetchProduct(ctx, scraper, limiter, region, cfg, gender, url)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return pageListed, collected, err
				}
				logger.Warn("product skipped", "url", url, "error", err)
				c.Reporter.AppendLog("warn", fmt.Sprintf("%s: skipped %s: %v", cfg.Key, url, err))
				continue
			}
			if product == nil {
				continue // not 100% cotton
			}

			if c.Store.Add(product) {
				collected++
				c.Reporter.ProductFound(cfg.Key)
				c.Metrics.ProductsCollected.WithLabelValues(cfg.Key).Inc()
				c.Publisher.Publish(ctx, events.EventProductFound, "", map[string]any{
					"retailer": cfg.Key, "name": product.Name, "url": product.URL,
				})
			}

			if c.MaxProducts > 0 && collected >= c.MaxProducts {
				return pageListed, collected, nil
			}
		}

		frac := (float64(genderIdx) + float64(page)/float64(c.MaxPages)) / float64(genderCount)
		c.Reporter.RetailerProgress(cfg.Key, frac)

		if !hasNext || len(urls) == 0 {
			break
		}
	}

	return pageListed, collected, nil
}

// listWithRetry fetches a category page, retrying once after a transient
// failure.
func (c *Coordinator) listWithRetry(ctx context.Context, scraper scrape.Scraper, limiter ratelimit.Limiter, region, key, gender string, page int) ([]string, bool, error) {
	start := time.Now()
	urls, hasNext, err := scraper.ListCategoryPage(ctx, region, gender, page)
	c.Metrics.FetchDuration.WithLabelValues(key, "listing").Observe(time.Since(start).Seconds())
	if err == nil || ctx.Err() != nil {
		return urls, hasNext, err
	}

	c.Metrics.FetchRetries.WithLabelValues(key).Inc()
	if err := sleepCtx(ctx, c.RetryDelay); err != nil {
		return nil, false, err
	}
	if err := limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	start = time.Now()
	urls, hasNext, err = scraper.ListCategoryPage(ctx, region, gender, page)
	c.Metrics.FetchDuration.WithLabelValues(key, "listing").Observe(time.Since(start).Seconds())
	return urls, hasNext, err
}

// fetchProduct retrieves one product page with bounded retries, runs material
// detection and builds the stored product. A nil product with nil error means
// the composition did not qualify.
func (c *Coordinator) fetchProduct(ctx context.Context, scraper scrape.Scraper, limiter ratelimit.Limiter, region string, cfg *registry.Config, gender, url string) (*models.Product, error) {
	var details *scrape.Details
	var err error

	for attempt := 1; attempt <= c.DetailAttempts; attempt++ {
		start := time.Now()
		details, err = scraper.FetchDetails(ctx, region, url)
		c.Metrics.FetchDuration.WithLabelValues(cfg.Key, "details").Observe(time.Since(start).Seconds())
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == c.DetailAttempts {
			return nil, fmt.Errorf("after %d attempts: %w", attempt, err)
		}

		c.Metrics.FetchRetries.WithLabelValues(cfg.Key).Inc()
		if err := sleepCtx(ctx, time.Duration(attempt)*c.RetryDelay); err != nil {
			return nil, err
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ok, label := c.Detector.Detect(details.Composition)
	if !ok {
		return nil, nil
	}

	currency := ""
	if reg, ok := c.Registry.Region(region); ok {
		currency = reg.Currency
	}

	price, _ := scrape.CleanPrice(details.PriceText)

	return &models.Product{
		ID:        models.ProductID(cfg.Key, url),
		Name:      details.Name,
		Brand:     details.Brand,
		Price:     price,
		Currency:  currency,
		URL:       url,
		ImageURL:  details.ImageURL,
		Gender:    gender,
		Category:  scrape.CategorizeProduct(details.Name, url),
		Material:  label,
		RawText:   details.Composition,
		Color:     details.Color,
		Sizes:     details.Sizes,
		Source:    cfg.Key,
		Region:    region,
		ScrapedAt: time.Now().UTC(),
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
