// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package curation

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wildframe/folio/photos"
	"github.com/wildframe/folio/spatial"
)

// H3Resolution used to find confirmed names around a point.
const H3Resolution = 9

// NearbyConfirmedRadius is how far, in meters, a confirmed name is reused for
// another photo.
const NearbyConfirmedRadius = 150.0

// ErrNotFound is returned when a photo has no confirmed name.
var ErrNotFound = errors.New("location name not found")

// LocationName is a location name confirmed by the editor for a photo.
type LocationName struct {
	PhotoID    string         `json:"photo_id"`
	Point      *spatial.Point `json:"point,omitempty"`
	Name       string         `json:"name"`
	Country    string         `json:"country,omitempty"`
	Method     string         `json:"method"`     // google_maps, place_details, nearby_search, nearby_judgment, coordinates, manual, manual_input
	Confidence string         `json:"confidence"` // high, medium, low, none
	Notes      string         `json:"notes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	H3Res9     int64          `json:"-"`
}

func (n *LocationName) computeH3() error {
	if n.Point == nil {
		n.H3Res9 = 0

		return nil
	}

	cell, err := n.Point.Cell(H3Resolution)
	if err != nil {
		return err
	}

	n.H3Res9 = cell

	return nil
}

// LocationNameRepository handles persistence of confirmed location names.
type LocationNameRepository interface {
	// CreateSchema creates the location_names table
	CreateSchema() error

	// Save inserts or updates the name of a photo
	Save(name *LocationName) error

	// Get returns the confirmed name of a photo, or ErrNotFound
	Get(photoID string) (*LocationName, error)

	// List returns names, most recently updated first
	List(limit, offset int) ([]*LocationName, error)

	// AllSorted returns every name sorted by photo id
	AllSorted() ([]*LocationName, error)

	// BulkInsert inserts names in a single transaction
	BulkInsert(names []*LocationName) error

	// Count returns the number of confirmed names
	Count() (int, error)

	// CountByMethod returns the number of names per method
	CountByMethod() (map[string]int, error)

	// NearbyConfirmed returns the closest confirmed name within
	// NearbyConfirmedRadius of p, or ErrNotFound
	NearbyConfirmed(p spatial.Point) (*LocationName, error)

	// Overrides returns the confirmed names keyed by photo id
	Overrides() (map[string]photos.Override, error)

	// DeleteAll removes every name
	DeleteAll() error

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlLocationNameRepository struct {
	db *sql.DB
}

// NewLocationNameRepository creates a new location name repository.
func NewLocationNameRepository(db *sql.DB) LocationNameRepository {
	return &sqlLocationNameRepository{db: db}
}

func (r *sqlLocationNameRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlLocationNameRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS location_names (
			photo_id VARCHAR NOT NULL,
			lat DOUBLE,
			lng DOUBLE,
			name VARCHAR NOT NULL,
			country VARCHAR NOT NULL,
			method VARCHAR NOT NULL,
			confidence VARCHAR NOT NULL,
			notes TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res9 BIGINT,
			UNIQUE(photo_id)
		);
	`)

	return err
}

func nullPoint(p *spatial.Point) (lat, lng sql.NullFloat64) {
	if p == nil {
		return lat, lng
	}

	return sql.NullFloat64{Float64: p.Lat, Valid: true}, sql.NullFloat64{Float64: p.Lng, Valid: true}
}

func nullCell(n *LocationName) sql.NullInt64 {
	if n.Point == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: n.H3Res9, Valid: true}
}

func (r *sqlLocationNameRepository) Save(name *LocationName) error {
	existing, err := r.Get(name.PhotoID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if err = name.computeH3(); err != nil {
		return err
	}

	name.UpdatedAt = time.Now()
	if existing != nil {
		name.CreatedAt = existing.CreatedAt
		lat, lng := nullPoint(name.Point)

		_, err = r.db.Exec(`
			UPDATE location_names
			SET lat = ?, lng = ?, name = ?, country = ?, method = ?,
			    confidence = ?, notes = ?, updated_at = ?, h3_res9 = ?
			WHERE photo_id = ?
		`,
			lat,
			lng,
			name.Name,
			name.Country,
			name.Method,
			name.Confidence,
			name.Notes,
			name.UpdatedAt,
			nullCell(name),
			name.PhotoID,
		)

		return err
	}

	name.CreatedAt = name.UpdatedAt

	return r.BulkInsert([]*LocationName{name})
}

func (r *sqlLocationNameRepository) BulkInsert(names []*LocationName) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO location_names(
			photo_id,
			lat,
			lng,
			name,
			country,
			method,
			confidence,
			notes,
			created_at,
			updated_at,
			h3_res9
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = errors.Join(err, rErr)
		}

		return err
	}
	defer stmt.Close()

	for _, n := range names {
		if err = n.computeH3(); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = errors.Join(err, rErr)
			}

			return err
		}

		lat, lng := nullPoint(n.Point)

		if _, err = stmt.Exec(
			n.PhotoID,
			lat,
			lng,
			n.Name,
			n.Country,
			n.Method,
			n.Confidence,
			n.Notes,
			n.CreatedAt,
			n.UpdatedAt,
			nullCell(n),
		); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = errors.Join(err, rErr)
			}

			return fmt.Errorf("inserting name of photo %s: %w", n.PhotoID, err)
		}
	}

	return tx.Commit()
}

const baseSelect = `
	SELECT photo_id, lat, lng, name, country, method, confidence, notes,
	       created_at, updated_at, h3_res9
	FROM location_names
`

func (r *sqlLocationNameRepository) list(query string, args ...any) ([]*LocationName, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []*LocationName

	for rows.Next() {
		var (
			n        LocationName
			lat, lng sql.NullFloat64
			h3Res9   sql.NullInt64
		)

		err := rows.Scan(
			&n.PhotoID,
			&lat,
			&lng,
			&n.Name,
			&n.Country,
			&n.Method,
			&n.Confidence,
			&n.Notes,
			&n.CreatedAt,
			&n.UpdatedAt,
			&h3Res9,
		)
		if err != nil {
			return nil, err
		}

		if lat.Valid && lng.Valid {
			n.Point = &spatial.Point{Lat: lat.Float64, Lng: lng.Float64}
		}

		if h3Res9.Valid {
			n.H3Res9 = h3Res9.Int64
		}

		names = append(names, &n)
	}

	return names, rows.Err()
}

func (r *sqlLocationNameRepository) Get(photoID string) (*LocationName, error) {
	names, err := r.list(baseSelect+` WHERE photo_id = ?`, photoID)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, photoID)
	}

	return names[0], nil
}

func (r *sqlLocationNameRepository) List(limit, offset int) ([]*LocationName, error) {
	query := baseSelect + ` ORDER BY updated_at DESC, photo_id`

	if limit > 0 {
		return r.list(query+` LIMIT ? OFFSET ?`, limit, offset)
	}

	return r.list(query)
}

func (r *sqlLocationNameRepository) AllSorted() ([]*LocationName, error) {
	return r.list(baseSelect + ` ORDER BY photo_id`)
}

func (r *sqlLocationNameRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM location_names",
	).Scan(&count)

	return count, err
}

func (r *sqlLocationNameRepository) CountByMethod() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT method, COUNT(*) FROM location_names GROUP BY method`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMethod := make(map[string]int)

	for rows.Next() {
		var (
			method string
			count  int
		)

		if err := rows.Scan(&method, &count); err != nil {
			return nil, err
		}

		byMethod[method] = count
	}

	return byMethod, rows.Err()
}

func (r *sqlLocationNameRepository) NearbyConfirmed(p spatial.Point) (*LocationName, error) {
	// a res 9 cell is wider than NearbyConfirmedRadius, so the first ring
	// covers every point in range
	cells, err := p.Disk(H3Resolution, 1)
	if err != nil {
		return nil, err
	}

	args := make([]any, 0, len(cells))
	for _, c := range cells {
		args = append(args, c)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cells)), ", ")

	candidates, err := r.list(baseSelect+` WHERE h3_res9 IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}

	var (
		best     *LocationName
		bestDist = NearbyConfirmedRadius
	)

	for _, c := range candidates {
		if c.Point == nil {
			continue
		}

		if d := p.HaversineDistance(c.Point); d <= bestDist {
			best, bestDist = c, d
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: near %s", ErrNotFound, p.ClusterKey())
	}

	return best, nil
}

func (r *sqlLocationNameRepository) Overrides() (map[string]photos.Override, error) {
	names, err := r.AllSorted()
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]photos.Override, len(names))
	for _, n := range names {
		overrides[n.PhotoID] = photos.Override{Name: n.Name, Country: n.Country}
	}

	return overrides, nil
}

func (r *sqlLocationNameRepository) DeleteAll() error {
	_, err := r.db.Exec(`DELETE FROM location_names`)

	return err
}
