package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/careercompass/internal/shell"
)

// HandleView renders the declarative view for ?path=. It never fails:
// unknown paths produce the not-found view.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = shell.PathHome
	}
	JSON(w, http.StatusOK, h.shell.View(path))
}

// HandleListCareers returns the ranked career matches.
func (h *Handler) HandleListCareers(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.catalog.Careers())
}

// HandleGetCareer returns one career match.
func (h *Handler) HandleGetCareer(w http.ResponseWriter, r *http.Request) {
	career, ok := h.catalog.Career(chi.URLParam(r, shell.ParamCareerID))
	if !ok {
		Error(w, http.StatusNotFound, "career not found")
		return
	}
	JSON(w, http.StatusOK, career)
}

// HandleRoadmap returns the roadmap for a career. Unknown ids get the
// generic title rather than a 404.
func (h *Handler) HandleRoadmap(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.catalog.Roadmap(chi.URLParam(r, shell.ParamCareerID)))
}
