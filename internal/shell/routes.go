// Package shell maps URL paths to page views and describes each view
// declaratively for the presentation layer.
package shell

import (
	"net/url"
	"strings"
)

// ViewName identifies a page.
type ViewName string

const (
	ViewHome       ViewName = "home"
	ViewAssessment ViewName = "assessment"
	ViewResults    ViewName = "results"
	ViewRoadmap    ViewName = "roadmap"
	ViewNotFound   ViewName = "not_found"
)

// Paths of the static routes.
const (
	PathHome       = "/"
	PathAssessment = "/assessment"
	PathResults    = "/results"
	roadmapPrefix  = "roadmap"
)

// ParamCareerID is the roadmap route parameter.
const ParamCareerID = "careerId"

// Route is the result of resolving a path.
type Route struct {
	View   ViewName          `json:"view"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// CareerID returns the roadmap parameter, empty for other views.
func (r Route) CareerID() string {
	return r.Params[ParamCareerID]
}

// RoadmapPath builds the roadmap path for a career id.
func RoadmapPath(careerID string) string {
	return "/" + roadmapPrefix + "/" + url.PathEscape(careerID)
}

// Resolve maps a request path to a route. It never fails: anything outside
// the route table resolves to the not-found view. Route segments match
// case-insensitively; the career id is kept as given.
func Resolve(path string) Route {
	path = normalize(path)
	switch {
	case path == PathHome:
		return Route{View: ViewHome, Path: path}
	case strings.EqualFold(path, PathAssessment):
		return Route{View: ViewAssessment, Path: PathAssessment}
	case strings.EqualFold(path, PathResults):
		return Route{View: ViewResults, Path: PathResults}
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) == 2 && strings.EqualFold(segments[0], roadmapPrefix) && segments[1] != "" {
		id := segments[1]
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
		return Route{View: ViewRoadmap, Path: "/" + roadmapPrefix + "/" + segments[1], Params: map[string]string{ParamCareerID: id}}
	}

	return Route{View: ViewNotFound, Path: path}
}

// normalize strips query and fragment, ensures a leading slash and drops a
// trailing one.
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
