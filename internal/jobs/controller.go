// Package jobs owns the run lifecycle: one active scraping job at a time,
// started and stopped through the Controller, executed by the Coordinator.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cottonscout/cotton-scraper/internal/events"
	"github.com/cottonscout/cotton-scraper/internal/metrics"
	"github.com/cottonscout/cotton-scraper/internal/registry"
	"github.com/cottonscout/cotton-scraper/internal/status"
	"github.com/cottonscout/cotton-scraper/internal/storage"
	"github.com/cottonscout/cotton-scraper/internal/store"
)

// ControllerDeps wires the controller's collaborators.
type ControllerDeps struct {
	Registry    *registry.Registry
	Coordinator *Coordinator
	Store       *store.Store
	Storage     storage.Storage
	Reporter    *status.Reporter
	Publisher   *events.Publisher
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Controller enforces the single-active-job rule and drives a run from
// validation through snapshot persistence. Every run ends in exactly one
// finalize, whether it completed, was stopped, or failed.
type Controller struct {
	deps ControllerDeps

	mu     sync.Mutex
	active bool
	jobID  string
	cancel context.CancelFunc
	done   chan struct{}
}

func NewController(deps ControllerDeps) *Controller {
	return &Controller{deps: deps}
}

// Start validates the request and launches the run asynchronously. It
// returns the job ID, or a ConflictError when a run is already active, a
// ValidationError for malformed input, or an UnknownRetailerError for a
// retailer the region does not serve.
func (c *Controller) Start(req Request) (string, error) {
	region, configs, genders, err := c.resolveRequest(req)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return "", &ConflictError{Message: "a scraping job is already running"}
	}

	jobID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	c.active = true
	c.jobID = jobID
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	keys := make([]string, len(configs))
	for i, cfg := range configs {
		keys[i] = cfg.Key
	}

	c.deps.Store.Reset()
	c.deps.Reporter.Begin(jobID, region, keys, genders)
	c.deps.Metrics.JobsStarted.Inc()
	c.deps.Publisher.Publish(ctx, events.EventJobStarted, jobID, map[string]any{
		"region": region, "retailers": keys, "genders": genders,
	})
	c.deps.Logger.Info("job started",
		"job_id", jobID, "region", region, "retailers", keys, "genders", genders)

	go c.run(ctx, done, jobID, region, configs, genders)
	return jobID, nil
}

func (c *Controller) resolveRequest(req Request) (string, []*registry.Config, []string, error) {
	if req.Region == "" {
		return "", nil, nil, &ValidationError{Field: "region", Message: "region is required"}
	}
	if _, ok := c.deps.Registry.Region(req.Region); !ok {
		return "", nil, nil, &ValidationError{Field: "region", Message: "unsupported region " + req.Region}
	}

	if len(req.Retailers) == 0 {
		return "", nil, nil, &ValidationError{Field: "retailers", Message: "at least one retailer is required"}
	}
	if len(req.Genders) == 0 {
		return "", nil, nil, &ValidationError{Field: "genders", Message: "at least one gender is required"}
	}

	for _, gender := range req.Genders {
		if !registry.IsKnownGender(gender) {
			return "", nil, nil, &ValidationError{Field: "genders", Message: "unknown gender " + gender}
		}
	}

	var configs []*registry.Config
	seen := make(map[string]struct{}, len(req.Retailers))
	for _, key := range req.Retailers {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cfg, err := c.deps.Registry.Resolve(req.Region, key)
		if err != nil {
			return "", nil, nil, err
		}
		configs = append(configs, cfg)
	}

	return req.Region, configs, req.Genders, nil
}

func (c *Controller) run(ctx context.Context, done chan struct{}, jobID, region string, configs []*registry.Config, genders []string) {
	defer func() {
		c.mu.Lock()
		c.active = false
		c.cancel = nil
		c.mu.Unlock()
		close(done)
	}()

	// A stop request can land before this goroutine is scheduled; never
	// move the state backwards from stopping.
	if c.deps.Reporter.State() == status.StateStarting {
		c.deps.Reporter.SetState(status.StateRunning)
	}
	runErr := c.deps.Coordinator.Run(ctx, jobID, region, configs, genders)
	stopped := ctx.Err() != nil

	// Persistence runs on a fresh context: a stop request cancels
	// scraping, never the snapshot write.
	snap := c.deps.Store.Snapshot(time.Now().UTC())
	saveCtx, cancelSave := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSave()

	name, saveErr := c.deps.Storage.Save(saveCtx, snap)

	switch {
	case saveErr != nil:
		c.deps.Logger.Error("snapshot persistence failed", "job_id", jobID, "error", saveErr)
		c.deps.Reporter.SetError(saveErr.Error())
		c.finish(jobID, status.StateFailed)
	case runErr != nil && !stopped:
		c.deps.Reporter.SetSnapshotName(name)
		c.deps.Reporter.SetError(runErr.Error())
		c.finish(jobID, status.StateFailed)
	default:
		c.deps.Reporter.SetSnapshotName(name)
		c.deps.Publisher.Publish(saveCtx, events.EventSnapshotSaved, jobID, map[string]any{
			"name": name, "total_products": snap.TotalProducts,
		})
		c.deps.Logger.Info("snapshot saved",
			"job_id", jobID, "name", name, "total_products", snap.TotalProducts)
		c.deps.Reporter.AppendLog("info",
			fmt.Sprintf("run finished: %d products saved to %s", snap.TotalProducts, name))
		c.finish(jobID, status.StateCompleted)
	}
}

func (c *Controller) finish(jobID string, final status.State) {
	c.deps.Reporter.SetState(final)
	c.deps.Metrics.JobsCompleted.WithLabelValues(string(final)).Inc()

	event := events.EventJobCompleted
	if final == status.StateFailed {
		event = events.EventJobFailed
	}
	c.deps.Publisher.Publish(context.Background(), event, jobID, nil)
	c.deps.Logger.Info("job finished", "job_id", jobID, "state", string(final))
}

// Stop requests cooperative cancellation of the active run. Products
// collected so far are kept and the snapshot is still written. Stopping an
// idle controller is acknowledged as a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return nil
	}

	if !c.deps.Reporter.State().Terminal() {
		c.deps.Reporter.SetState(status.StateStopping)
	}
	c.deps.Publisher.Publish(context.Background(), events.EventJobStopping, c.jobID, nil)
	c.deps.Logger.Info("job stop requested", "job_id", c.jobID)
	c.cancel()
	return nil
}

// Status returns a copy of the current run view.
func (c *Controller) Status() status.Report {
	return c.deps.Reporter.Report()
}

// Wait blocks until the current run's goroutine has finished finalizing.
// With no run active it returns immediately.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}
