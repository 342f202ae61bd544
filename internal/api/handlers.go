// Package api exposes the scraping engine over HTTP: run control, live
// status, collected products and persisted snapshots.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cottonscout/cotton-scraper/internal/jobs"
	"github.com/cottonscout/cotton-scraper/internal/registry"
	"github.com/cottonscout/cotton-scraper/internal/storage"
	"github.com/cottonscout/cotton-scraper/internal/store"
)

type Server struct {
	controller *jobs.Controller
	registry   *registry.Registry
	store      *store.Store
	storage    storage.Storage
	logger     *slog.Logger
}

func NewServer(controller *jobs.Controller, reg *registry.Registry, productStore *store.Store, snapStorage storage.Storage, logger *slog.Logger) *Server {
	return &Server{
		controller: controller,
		registry:   reg,
		store:      productStore,
		storage:    snapStorage,
		logger:     logger.With("component", "api"),
	}
}

// Routes mounts the API endpoints on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape/start", s.handleStart)
		r.Post("/scrape/stop", s.handleStop)
		r.Get("/scrape/status", s.handleStatus)
		r.Get("/products", s.handleProducts)
		r.Get("/files", s.handleListFiles)
		r.Get("/files/{name}", s.handleLoadFile)
		r.Get("/config", s.handleConfig)
		r.Get("/retailers/{region}", s.handleRetailers)
	})

	return r
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req jobs.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	jobID, err := s.controller.Start(req)
	if err != nil {
		s.respondStartError(w, err)
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": s.controller.Status(),
	})
}

func (s *Server) respondStartError(w http.ResponseWriter, err error) {
	var vErr *jobs.ValidationError
	var cErr *jobs.ConflictError
	var uErr *registry.UnknownRetailerError

	switch {
	case errors.As(err, &vErr):
		s.respondError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &uErr):
		s.respondError(w, http.StatusBadRequest, uErr.Error())
	case errors.As(err, &cErr):
		s.respondError(w, http.StatusConflict, cErr.Error())
	default:
		s.logger.Error("start failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleStop acknowledges the stop even when no job is active.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Stop(); err != nil {
		s.logger.Error("stop failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"status": s.controller.Status(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.controller.Status())
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products := s.store.Products()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"total":    len(products),
		"products": products,
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	infos, err := s.storage.List(r.Context())
	if err != nil {
		s.logger.Error("list snapshots failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "could not list snapshots")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"total": len(infos),
		"files": infos,
	})
}

func (s *Server) handleLoadFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	snap, err := s.storage.Load(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		s.logger.Error("load snapshot failed", "name", name, "error", err)
		s.respondError(w, http.StatusInternalServerError, "could not load snapshot")
		return
	}

	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	type retailerView struct {
		Key     string   `json:"key"`
		Name    string   `json:"name"`
		Regions []string `json:"regions"`
	}

	regions := s.registry.Regions()
	regionCodes := make([]string, len(regions))
	retailerSet := make(map[string]*retailerView)
	var retailers []*retailerView

	for i, region := range regions {
		regionCodes[i] = region.Code
		for _, cfg := range s.registry.ListForRegion(region.Code) {
			view, ok := retailerSet[cfg.Key]
			if !ok {
				view = &retailerView{Key: cfg.Key, Name: cfg.Name}
				retailerSet[cfg.Key] = view
				retailers = append(retailers, view)
			}
			view.Regions = append(view.Regions, region.Code)
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"regions":   regionCodes,
		"genders":   registry.KnownGenders,
		"retailers": retailers,
	})
}

func (s *Server) handleRetailers(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	if _, ok := s.registry.Region(region); !ok {
		s.respondError(w, http.StatusNotFound, "unknown region "+region)
		return
	}

	type retailerView struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}

	configs := s.registry.ListForRegion(region)
	retailers := make([]retailerView, len(configs))
	for i, cfg := range configs {
		retailers[i] = retailerView{Key: cfg.Key, Name: cfg.Name}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"region":    region,
		"retailers": retailers,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respondJSON(w, code, map[string]string{"error": message})
}
