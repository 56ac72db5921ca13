// Package search implements the place search backing /api/search: a SQL
// store queried case-insensitively by name, with an optional geocoder
// fallback.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
)

// Place is one search result row.
type Place struct {
	PlaceID     string  `json:"place_id"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// MinQueryLen is the shortest query that triggers a database lookup;
// anything shorter short-circuits to an empty result.
const MinQueryLen = 2

const resultLimit = 10

// Store queries places from a SQL database. Supported drivers: "sqlite"
// (default, seeded from the catalog at startup) and "pgx" (PostgreSQL, the
// planet_osm-style deployment).
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the search database.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite", "pgx":
	default:
		return nil, fmt.Errorf("unsupported search driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open search database: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed creates the places table and fills it from the catalog. Only the
// sqlite backend is seeded; a PostgreSQL deployment brings its own data.
func (s *Store) Seed(ctx context.Context, locations []geo.Location) error {
	if s.driver != "sqlite" {
		return nil
	}

	const schema = `CREATE TABLE IF NOT EXISTS places (
		place_id     TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		lat          REAL NOT NULL,
		lon          REAL NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create places table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO places (place_id, display_name, lat, lon) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, loc := range locations {
		if _, err := stmt.ExecContext(ctx, loc.ID, loc.Name, loc.Lat, loc.Lon); err != nil {
			return fmt.Errorf("seed place %s: %w", loc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info().Int("places", len(locations)).Msg("Search database seeded from catalog")
	return nil
}

// Search returns up to ten places whose name contains the query,
// case-insensitively. Queries shorter than MinQueryLen return an empty
// result with no database round-trip.
func (s *Store) Search(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLen {
		return []Place{}, nil
	}

	pattern := "%" + query + "%"

	var stmt string
	if s.driver == "pgx" {
		stmt = fmt.Sprintf(`SELECT place_id, display_name, lat, lon FROM places WHERE display_name ILIKE $1 LIMIT %d`, resultLimit)
	} else {
		stmt = fmt.Sprintf(`SELECT place_id, display_name, lat, lon FROM places WHERE LOWER(display_name) LIKE LOWER(?) LIMIT %d`, resultLimit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, pattern)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	places := make([]Place, 0, resultLimit)
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.PlaceID, &p.DisplayName, &p.Lat, &p.Lon); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
