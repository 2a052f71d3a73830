package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ashureev/careercompass/internal/domain"
	"github.com/ashureev/careercompass/internal/shared"
	_ "modernc.org/sqlite"
)

// MemoryPath selects a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository. dbPath may be MemoryPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := MemoryPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS careers (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		match_score INTEGER NOT NULL,
		salary TEXT NOT NULL,
		growth TEXT NOT NULL,
		level TEXT NOT NULL,
		description TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_careers_match ON careers(match_score DESC);

	CREATE TABLE IF NOT EXISTS career_skills (
		career_id TEXT NOT NULL REFERENCES careers(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		skill TEXT NOT NULL,
		PRIMARY KEY (career_id, position)
	);

	CREATE TABLE IF NOT EXISTS roadmap_phases (
		id INTEGER PRIMARY KEY,
		phase TEXT NOT NULL,
		title TEXT NOT NULL,
		duration TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS roadmap_items (
		phase_id INTEGER NOT NULL REFERENCES roadmap_phases(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		item TEXT NOT NULL,
		PRIMARY KEY (phase_id, position)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// SeedCatalog writes careers and phases in one transaction, retrying while
// the database is busy.
func (s *SQLiteStore) SeedCatalog(ctx context.Context, careers []domain.CareerMatch, phases []domain.RoadmapPhase) error {
	return shared.RetryOnConflict(ctx, "seed_catalog", 3, 100*time.Millisecond, func() error {
		return s.seedOnce(ctx, careers, phases)
	})
}

func (s *SQLiteStore) seedOnce(ctx context.Context, careers []domain.CareerMatch, phases []domain.RoadmapPhase) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Warn("failed to roll back catalog seed", "error", rbErr)
			}
		}
	}()

	for _, c := range careers {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO careers (id, title, match_score, salary, growth, level, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				match_score = excluded.match_score,
				salary = excluded.salary,
				growth = excluded.growth,
				level = excluded.level,
				description = excluded.description`,
			c.ID, c.Title, c.Match, c.Salary, c.Growth, c.Level, c.Description,
		); err != nil {
			return fmt.Errorf("upsert career %s: %w", c.ID, err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM career_skills WHERE career_id = ?`, c.ID); err != nil {
			return fmt.Errorf("clear skills for %s: %w", c.ID, err)
		}
		for i, skill := range c.Skills {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO career_skills (career_id, position, skill) VALUES (?, ?, ?)`,
				c.ID, i, skill,
			); err != nil {
				return fmt.Errorf("insert skill for %s: %w", c.ID, err)
			}
		}
	}

	for _, p := range phases {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO roadmap_phases (id, phase, title, duration, completed)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				phase = excluded.phase,
				title = excluded.title,
				duration = excluded.duration,
				completed = excluded.completed`,
			p.ID, p.Phase, p.Title, p.Duration, p.Completed,
		); err != nil {
			return fmt.Errorf("upsert roadmap phase %d: %w", p.ID, err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM roadmap_items WHERE phase_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear items for phase %d: %w", p.ID, err)
		}
		for i, item := range p.Items {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO roadmap_items (phase_id, position, item) VALUES (?, ?, ?)`,
				p.ID, i, item,
			); err != nil {
				return fmt.Errorf("insert item for phase %d: %w", p.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// ListCareers returns every career ordered by match score, highest first.
func (s *SQLiteStore) ListCareers(ctx context.Context) ([]domain.CareerMatch, error) {
	careers, err := s.queryCareers(ctx)
	if err != nil {
		return nil, err
	}
	skills, err := s.queryOrderedPairs(ctx, "career skills",
		`SELECT career_id, skill FROM career_skills ORDER BY career_id, position`)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(careers))
	for i, c := range careers {
		index[c.ID] = i
	}
	for _, pair := range skills {
		if i, ok := index[pair.key]; ok {
			careers[i].Skills = append(careers[i].Skills, pair.value)
		}
	}
	return careers, nil
}

// ListRoadmapPhases returns the roadmap template ordered by phase id.
func (s *SQLiteStore) ListRoadmapPhases(ctx context.Context) ([]domain.RoadmapPhase, error) {
	phases, err := s.queryPhases(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.queryOrderedPairs(ctx, "roadmap items",
		`SELECT CAST(phase_id AS TEXT), item FROM roadmap_items ORDER BY phase_id, position`)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(phases))
	for i, p := range phases {
		index[strconv.Itoa(p.ID)] = i
	}
	for _, pair := range items {
		if i, ok := index[pair.key]; ok {
			phases[i].Items = append(phases[i].Items, pair.value)
		}
	}
	return phases, nil
}

// Each query drains and closes its rows before returning so a single
// connection (the in-memory case) is never held by two result sets.

func (s *SQLiteStore) queryCareers(ctx context.Context) ([]domain.CareerMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, match_score, salary, growth, level, description
		FROM careers ORDER BY match_score DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query careers: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close careers rows", "error", closeErr)
		}
	}()

	var careers []domain.CareerMatch
	for rows.Next() {
		var c domain.CareerMatch
		if err := rows.Scan(&c.ID, &c.Title, &c.Match, &c.Salary, &c.Growth, &c.Level, &c.Description); err != nil {
			return nil, fmt.Errorf("scan career row: %w", err)
		}
		careers = append(careers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate careers: %w", err)
	}
	return careers, nil
}

func (s *SQLiteStore) queryPhases(ctx context.Context) ([]domain.RoadmapPhase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, phase, title, duration, completed
		FROM roadmap_phases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query roadmap phases: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close roadmap phase rows", "error", closeErr)
		}
	}()

	var phases []domain.RoadmapPhase
	for rows.Next() {
		var p domain.RoadmapPhase
		if err := rows.Scan(&p.ID, &p.Phase, &p.Title, &p.Duration, &p.Completed); err != nil {
			return nil, fmt.Errorf("scan roadmap phase row: %w", err)
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roadmap phases: %w", err)
	}
	return phases, nil
}

type keyValue struct {
	key   string
	value string
}

func (s *SQLiteStore) queryOrderedPairs(ctx context.Context, what, query string) ([]keyValue, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", "table", what, "error", closeErr)
		}
	}()

	var pairs []keyValue
	for rows.Next() {
		var kv keyValue
		if err := rows.Scan(&kv.key, &kv.value); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", what, err)
		}
		pairs = append(pairs, kv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return pairs, nil
}

var _ Repository = (*SQLiteStore)(nil)
