// Package api provides HTTP handlers for the CareerCompass API.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/careercompass/internal/assessment"
	"github.com/ashureev/careercompass/internal/catalog"
	"github.com/ashureev/careercompass/internal/config"
	"github.com/ashureev/careercompass/internal/shell"
)

// defaultMaxRequestBodySize caps submission bodies (64KB).
const defaultMaxRequestBodySize = 64 << 10

// Pinger reports storage readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides common handler utilities.
type Handler struct {
	mgr         *assessment.Manager
	shell       *shell.Shell
	catalog     *catalog.Catalog
	store       Pinger
	rateLimiter *RateLimiter
	cfg         *config.Config
}

// NewHandler creates a new Handler with common dependencies. store may be nil
// when the catalog was built without a database.
func NewHandler(cfg *config.Config, mgr *assessment.Manager, sh *shell.Shell, c *catalog.Catalog, store Pinger) *Handler {
	return &Handler{
		mgr:         mgr,
		shell:       sh,
		catalog:     c,
		store:       store,
		rateLimiter: NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration),
		cfg:         cfg,
	}
}

// RegisterRoutes mounts the API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/config", h.HandleConfig)
	r.Get("/view", h.HandleView)

	r.Get("/careers", h.HandleListCareers)
	r.Get("/careers/{careerId}", h.HandleGetCareer)
	r.Get("/roadmap/{careerId}", h.HandleRoadmap)

	r.Route("/assessment", func(r chi.Router) {
		r.Post("/", h.HandleStartAssessment)
		r.Get("/", h.HandleGetAssessment)
		r.Delete("/", h.HandleEndAssessment)
		r.Post("/messages", h.HandleSubmit)
	})
}

// Close stops background work owned by the handler.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
