// Package store holds the products collected during a single run, deduplicated
// by normalized URL.
package store

import (
	"sync"
	"time"

	"github.com/cottonscout/cotton-scraper/internal/models"
)

// Store is the in-memory product collection for one run. Retailer tasks add
// concurrently; the first product seen for a normalized URL wins and later
// duplicates are dropped.
type Store struct {
	mu    sync.Mutex
	byURL map[string]*models.Product
	order []string
}

func New() *Store {
	return &Store{
		byURL: make(map[string]*models.Product),
	}
}

// Add records a product unless one with the same normalized URL already
// exists. It reports whether the product was stored.
func (s *Store) Add(p *models.Product) bool {
	key := models.NormalizeURL(p.URL)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byURL[key]; exists {
		return false
	}
	s.byURL[key] = p
	s.order = append(s.order, key)
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byURL)
}

// Products returns the collected products in insertion order. The slice is a
// copy; callers may not mutate stored products through it safely while a run
// is active.
func (s *Store) Products() []*models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]*models.Product, 0, len(s.order))
	for _, key := range s.order {
		products = append(products, s.byURL[key])
	}
	return products
}

// Snapshot freezes the current contents into a persistable snapshot.
func (s *Store) Snapshot(at time.Time) *models.Snapshot {
	products := s.Products()
	return &models.Snapshot{
		ScrapedAt:     at,
		TotalProducts: len(products),
		Products:      products,
	}
}

// Reset clears the store for the next run.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byURL = make(map[string]*models.Product)
	s.order = nil
}
