// Package registry holds the static table of retailer capability descriptors.
// Configs are loaded once at process start and treated as immutable for the
// lifetime of a run; adding a retailer is adding a record, not new code.
package registry

import (
	"fmt"
	"sort"
	"time"
)

// Config describes one retailer's scraping capabilities. Instances are
// referenced, never copied, by scrapers.
type Config struct {
	Key                    string
	Name                   string
	BaseURLs               map[string]string // region -> base URL
	CategoryPaths          map[string]string // gender -> category path
	MaterialFilter         string            // query string appended when supported
	SupportsMaterialFilter bool
	MinDelay               time.Duration
	MaxDelay               time.Duration
}

// Region describes a supported market.
type Region struct {
	Code           string
	Currency       string
	CurrencySymbol string
}

// UnknownRetailerError is returned when a key has no config for a region.
type UnknownRetailerError struct {
	Region string
	Key    string
}

func (e *UnknownRetailerError) Error() string {
	return fmt.Sprintf("unknown retailer %q for region %q", e.Key, e.Region)
}

// Registry is a pure lookup over the loaded retailer configs. It needs no
// locking: nothing mutates it during a job run.
type Registry struct {
	regions   map[string]Region
	retailers map[string]*Config
	order     []string
}

// New builds a registry from the given configs, preserving their order for
// deterministic listings.
func New(regions []Region, configs []*Config) *Registry {
	r := &Registry{
		regions:   make(map[string]Region, len(regions)),
		retailers: make(map[string]*Config, len(configs)),
	}
	for _, region := range regions {
		r.regions[region.Code] = region
	}
	for _, cfg := range configs {
		if cfg.MinDelay == 0 {
			cfg.MinDelay = defaultMinDelay
		}
		if cfg.MaxDelay == 0 {
			cfg.MaxDelay = defaultMaxDelay
		}
		r.retailers[cfg.Key] = cfg
		r.order = append(r.order, cfg.Key)
	}
	return r
}

// Default returns the registry loaded with the built-in retailer table.
func Default() *Registry {
	return New(defaultRegions, defaultRetailers())
}

// Region resolves a region code.
func (r *Registry) Region(code string) (Region, bool) {
	region, ok := r.regions[code]
	return region, ok
}

// Regions lists the supported regions sorted by code.
func (r *Registry) Regions() []Region {
	out := make([]Region, 0, len(r.regions))
	for _, region := range r.regions {
		out = append(out, region)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Resolve returns the config for key if the retailer serves region.
func (r *Registry) Resolve(region, key string) (*Config, error) {
	cfg, ok := r.retailers[key]
	if !ok {
		return nil, &UnknownRetailerError{Region: region, Key: key}
	}
	if _, ok := cfg.BaseURLs[region]; !ok {
		return nil, &UnknownRetailerError{Region: region, Key: key}
	}
	return cfg, nil
}

// ListForRegion returns, in load order, every retailer with a base URL for
// the region.
func (r *Registry) ListForRegion(region string) []*Config {
	var out []*Config
	for _, key := range r.order {
		cfg := r.retailers[key]
		if _, ok := cfg.BaseURLs[region]; ok {
			out = append(out, cfg)
		}
	}
	return out
}
