// Package store provides the SQLite-backed catalog storage.
package store

import (
	"context"

	"github.com/ashureev/careercompass/internal/domain"
)

// Repository defines the interface for the catalog tables.
type Repository interface {
	// SeedCatalog writes the given careers and roadmap phases, replacing
	// rows with the same ids. Seeding twice yields the same tables.
	SeedCatalog(ctx context.Context, careers []domain.CareerMatch, phases []domain.RoadmapPhase) error

	// ListCareers returns every career ordered by match score, highest first.
	ListCareers(ctx context.Context) ([]domain.CareerMatch, error)

	// ListRoadmapPhases returns the roadmap template ordered by phase id.
	ListRoadmapPhases(ctx context.Context) ([]domain.RoadmapPhase, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
