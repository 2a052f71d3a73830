// Package catalog exposes the read-only career and roadmap tables.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/ashureev/careercompass/internal/domain"
)

// FallbackCareerTitle is shown for career ids missing from the catalog.
const FallbackCareerTitle = "Your Career"

// Source provides the rows a Catalog is built from.
type Source interface {
	ListCareers(ctx context.Context) ([]domain.CareerMatch, error)
	ListRoadmapPhases(ctx context.Context) ([]domain.RoadmapPhase, error)
}

// Catalog is immutable after construction. Every accessor returns copies.
type Catalog struct {
	careers  []domain.CareerMatch
	byID     map[string]domain.CareerMatch
	roadmap  []domain.RoadmapPhase
	features []domain.Feature
}

// New builds a catalog from the given rows. Careers are ranked by match
// score, highest first.
func New(careers []domain.CareerMatch, roadmap []domain.RoadmapPhase, features []domain.Feature) *Catalog {
	c := &Catalog{
		byID: make(map[string]domain.CareerMatch, len(careers)),
	}
	for _, career := range careers {
		career = career.Clone()
		c.careers = append(c.careers, career)
		c.byID[career.ID] = career
	}
	sort.SliceStable(c.careers, func(i, j int) bool {
		return c.careers[i].Match > c.careers[j].Match
	})
	for _, phase := range roadmap {
		c.roadmap = append(c.roadmap, phase.Clone())
	}
	sort.SliceStable(c.roadmap, func(i, j int) bool {
		return c.roadmap[i].ID < c.roadmap[j].ID
	})
	c.features = append(c.features, features...)
	return c
}

// Default builds the catalog straight from the seed tables.
func Default() *Catalog {
	return New(SeedCareers(), SeedRoadmap(), SeedFeatures())
}

// Load reads the catalog from src once.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	careers, err := src.ListCareers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load careers: %w", err)
	}
	roadmap, err := src.ListRoadmapPhases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	return New(careers, roadmap, SeedFeatures()), nil
}

// Careers returns the ranked career matches.
func (c *Catalog) Careers() []domain.CareerMatch {
	out := make([]domain.CareerMatch, len(c.careers))
	for i, career := range c.careers {
		out[i] = career.Clone()
	}
	return out
}

// Career looks up a career by id.
func (c *Catalog) Career(id string) (domain.CareerMatch, bool) {
	career, ok := c.byID[id]
	if !ok {
		return domain.CareerMatch{}, false
	}
	return career.Clone(), true
}

// TopCareer returns the best match, if any.
func (c *Catalog) TopCareer() (domain.CareerMatch, bool) {
	if len(c.careers) == 0 {
		return domain.CareerMatch{}, false
	}
	return c.careers[0].Clone(), true
}

// CareerTitle returns the display title for id, or FallbackCareerTitle.
func (c *Catalog) CareerTitle(id string) string {
	if career, ok := c.byID[id]; ok {
		return career.Title
	}
	return FallbackCareerTitle
}

// Roadmap returns the shared roadmap template titled for careerID. The
// phases are the same for every career.
func (c *Catalog) Roadmap(careerID string) domain.Roadmap {
	phases := make([]domain.RoadmapPhase, len(c.roadmap))
	for i, phase := range c.roadmap {
		phases[i] = phase.Clone()
	}
	return domain.Roadmap{
		CareerID:    careerID,
		CareerTitle: c.CareerTitle(careerID),
		Phases:      phases,
	}
}

// Features returns the home page feature cards.
func (c *Catalog) Features() []domain.Feature {
	return append([]domain.Feature(nil), c.features...)
}
