package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottonscout/cotton-scraper/internal/jobs"
	"github.com/cottonscout/cotton-scraper/internal/material"
	"github.com/cottonscout/cotton-scraper/internal/metrics"
	"github.com/cottonscout/cotton-scraper/internal/models"
	"github.com/cottonscout/cotton-scraper/internal/ratelimit"
	"github.com/cottonscout/cotton-scraper/internal/registry"
	"github.com/cottonscout/cotton-scraper/internal/scrape"
	"github.com/cottonscout/cotton-scraper/internal/status"
	"github.com/cottonscout/cotton-scraper/internal/storage"
	"github.com/cottonscout/cotton-scraper/internal/store"
)

type nopLimiter struct{}

func (nopLimiter) Wait(ctx context.Context) error { return ctx.Err() }

// emptyScraper lists nothing, so started runs finish immediately.
type emptyScraper struct{ key string }

func (e emptyScraper) Key() string  { return e.key }
func (e emptyScraper) Name() string { return e.key }

func (e emptyScraper) BaseURL(region string) (string, error) {
	return "https://" + e.key + ".example", nil
}

func (e emptyScraper) ListCategoryPage(ctx context.Context, region, gender string, page int) ([]string, bool, error) {
	return nil, false, nil
}

func (e emptyScraper) FetchDetails(ctx context.Context, region, url string) (*scrape.Details, error) {
	return nil, nil
}

type memStorage struct {
	mu        sync.Mutex
	snapshots map[string]*models.Snapshot
}

func newMemStorage() *memStorage {
	return &memStorage{snapshots: make(map[string]*models.Snapshot)}
}

func (m *memStorage) Save(ctx context.Context, snap *models.Snapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := storage.SnapshotName(snap)
	m.snapshots[name] = snap
	return name, nil
}

func (m *memStorage) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var infos []models.SnapshotInfo
	for name := range m.snapshots {
		infos = append(infos, models.SnapshotInfo{Name: name, Size: 1, ModifiedAt: time.Now()})
	}
	return infos, nil
}

func (m *memStorage) Load(ctx context.Context, name string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return snap, nil
}

func newTestServer(t *testing.T) (*Server, *jobs.Controller, *store.Store, *memStorage) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.New(
		[]registry.Region{{Code: "UK", Currency: "GBP", CurrencySymbol: "£"}},
		[]*registry.Config{
			{
				Key: "hm", Name: "H&M",
				BaseURLs:      map[string]string{"UK": "https://hm.example"},
				CategoryPaths: map[string]string{"men": "/men", "women": "/women", "kids": "/kids"},
			},
		})
	reporter := status.NewReporter()
	productStore := store.New()
	snapStorage := newMemStorage()
	m := metrics.New(prometheus.NewRegistry())

	coord := &jobs.Coordinator{
		Registry: reg,
		Factory: func(cfg *registry.Config) scrape.Scraper {
			return emptyScraper{key: cfg.Key}
		},
		Detector:       material.NewDetector(),
		Store:          productStore,
		Reporter:       reporter,
		Metrics:        m,
		Logger:         logger,
		MaxPages:       1,
		DetailAttempts: 1,
		RetryDelay:     time.Millisecond,
		LimiterFor: func(cfg *registry.Config) ratelimit.Limiter {
			return nopLimiter{}
		},
	}

	ctrl := jobs.NewController(jobs.ControllerDeps{
		Registry:    reg,
		Coordinator: coord,
		Store:       productStore,
		Storage:     snapStorage,
		Reporter:    reporter,
		Metrics:     m,
		Logger:      logger,
	})

	return NewServer(ctrl, reg, productStore, snapStorage, logger), ctrl, productStore, snapStorage
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestStartEndpoint(t *testing.T) {
	srv, ctrl, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/scrape/start",
		`{"region":"UK","retailers":["hm"],"genders":["men"]}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)

	ctrl.Wait()
}

func TestStartEndpointValidation(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{region}`, http.StatusBadRequest},
		{"missing region", `{}`, http.StatusBadRequest},
		{"empty retailers", `{"region":"UK","genders":["men"]}`, http.StatusBadRequest},
		{"empty genders", `{"region":"UK","retailers":["hm"]}`, http.StatusBadRequest},
		{"unknown gender", `{"region":"UK","retailers":["hm"],"genders":["unisex"]}`, http.StatusBadRequest},
		{"unknown retailer", `{"region":"UK","retailers":["notashop"],"genders":["men"]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/scrape/start", tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestStopEndpointWhenIdleIsAcknowledged(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/scrape/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status status.Report `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, status.StateIdle, resp.Status.State)
}

func TestStatusEndpoint(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/scrape/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report status.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, status.StateIdle, report.State)
}

func TestProductsEndpoint(t *testing.T) {
	srv, _, productStore, _ := newTestServer(t)

	productStore.Add(&models.Product{
		ID: "abc", Name: "Cotton Tee", URL: "https://hm.example/p/tee", Source: "hm",
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int               `json:"total"`
		Products []*models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestFilesEndpoints(t *testing.T) {
	srv, _, _, snapStorage := newTestServer(t)

	snap := &models.Snapshot{
		ScrapedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TotalProducts: 0,
	}
	name, err := snapStorage.Save(context.Background(), snap)
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodGet, "/api/files", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), name)

	rec = doRequest(t, srv, http.MethodGet, "/api/files/"+name, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/files/products_19990101_000000.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRetailersEndpoint(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/retailers/UK", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hm"`)

	rec = doRequest(t, srv, http.MethodGet, "/api/retailers/DE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfigEndpoint(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"UK"`)
	assert.Contains(t, body, `"hm"`)
	assert.Contains(t, body, `"men"`)
}
