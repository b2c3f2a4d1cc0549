// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wildframe/folio/spatial"
)

// H3Resolution of the cell stored next to every located photo, about 170m
// across.
const H3Resolution = 9

// ErrNotFound is returned by Get for an unknown photo id.
var ErrNotFound = errors.New("photo not found")

// Store is a duckdb snapshot of the CMS photo records. It implements Source.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open duckdb connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateSchema creates the photos and photo_species tables.
func (s *Store) CreateSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS photos (
			id VARCHAR NOT NULL,
			title VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			lat DOUBLE,
			lng DOUBLE,
			h3_res9 BIGINT,
			location_name VARCHAR NOT NULL,
			country VARCHAR NOT NULL,
			date_manual VARCHAR NOT NULL,
			date_exif_original VARCHAR NOT NULL,
			date_exif_digitized VARCHAR NOT NULL,
			updated_at TIMESTAMP,
			synced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS photo_species (
			photo_id VARCHAR NOT NULL,
			position INTEGER NOT NULL,
			species_id VARCHAR NOT NULL,
			name VARCHAR NOT NULL
		);
	`)

	return err
}

// Replace swaps the whole snapshot for records in a single transaction.
func (s *Store) Replace(ctx context.Context, records []PhotoRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := replace(ctx, tx, records); err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = errors.Join(err, rErr)
		}

		return err
	}

	return tx.Commit()
}

func replace(ctx context.Context, tx *sql.Tx, records []PhotoRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM photo_species`); err != nil {
		return fmt.Errorf("clearing species: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos`); err != nil {
		return fmt.Errorf("clearing photos: %w", err)
	}

	photoStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO photos(
			id, title, category, lat, lng, h3_res9, location_name, country,
			date_manual, date_exif_original, date_exif_digitized, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer photoStmt.Close()

	speciesStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO photo_species(photo_id, position, species_id, name) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer speciesStmt.Close()

	for _, r := range records {
		var (
			lat, lng sql.NullFloat64
			h3       sql.NullInt64
		)

		if p, ok := r.Point(); ok {
			c, err := p.Cell(H3Resolution)
			if err != nil {
				return err
			}

			lat = sql.NullFloat64{Float64: p.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: p.Lng, Valid: true}
			h3 = sql.NullInt64{Int64: c, Valid: true}
		}

		var updatedAt sql.NullTime
		if !r.UpdatedAt.IsZero() {
			updatedAt = sql.NullTime{Time: r.UpdatedAt.UTC(), Valid: true}
		}

		if _, err := photoStmt.ExecContext(ctx,
			r.ID,
			r.Title,
			string(r.Category),
			lat,
			lng,
			h3,
			r.LocationName(),
			r.Country(),
			r.Dates.Manual,
			r.Dates.ExifOriginal,
			r.Dates.ExifDigitized,
			updatedAt,
		); err != nil {
			return fmt.Errorf("inserting photo %s: %w", r.ID, err)
		}

		for i, sp := range r.Species {
			if _, err := speciesStmt.ExecContext(ctx, r.ID, i, sp.ID, sp.Name); err != nil {
				return fmt.Errorf("inserting species of photo %s: %w", r.ID, err)
			}
		}
	}

	return nil
}

const selectPhotos = `
	SELECT id, title, category, lat, lng, location_name, country,
	       date_manual, date_exif_original, date_exif_digitized, updated_at
	FROM photos
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (PhotoRecord, error) {
	var (
		r                   PhotoRecord
		category            string
		lat, lng            sql.NullFloat64
		locationName, cntry string
		updatedAt           sql.NullTime
	)

	err := row.Scan(
		&r.ID,
		&r.Title,
		&category,
		&lat,
		&lng,
		&locationName,
		&cntry,
		&r.Dates.Manual,
		&r.Dates.ExifOriginal,
		&r.Dates.ExifDigitized,
		&updatedAt,
	)
	if err != nil {
		return r, err
	}

	r.Category = Category(category)

	if updatedAt.Valid {
		r.UpdatedAt = updatedAt.Time
	}

	if lat.Valid && lng.Valid || locationName != "" || cntry != "" {
		r.Location = &Location{Name: locationName, Country: cntry}
		if lat.Valid && lng.Valid {
			r.Location.Point = &spatial.Point{Lat: lat.Float64, Lng: lng.Float64}
		}
	}

	return r, nil
}

func (s *Store) query(ctx context.Context, where string, args ...any) ([]PhotoRecord, error) {
	query := selectPhotos
	if where != "" {
		query += " WHERE " + where
	}

	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PhotoRecord

	for rows.Next() {
		r, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachSpecies(ctx, records); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Store) attachSpecies(ctx context.Context, records []PhotoRecord) error {
	if len(records) == 0 {
		return nil
	}

	index := make(map[string]int, len(records))
	for i, r := range records {
		index[r.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT photo_id, species_id, name FROM photo_species ORDER BY photo_id, position
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var photoID string

		var sp SpeciesRef
		if err := rows.Scan(&photoID, &sp.ID, &sp.Name); err != nil {
			return err
		}

		if i, ok := index[photoID]; ok {
			records[i].Species = append(records[i].Species, sp)
		}
	}

	return rows.Err()
}

// ListPhotos returns the snapshot, restricted to category unless it is "".
func (s *Store) ListPhotos(ctx context.Context, category Category) ([]PhotoRecord, error) {
	if category == "" {
		return s.query(ctx, "")
	}

	return s.query(ctx, "category = ?", string(category))
}

// Located returns the photos carrying coordinates.
func (s *Store) Located(ctx context.Context) ([]PhotoRecord, error) {
	return s.query(ctx, "lat IS NOT NULL AND lng IS NOT NULL")
}

// Get returns a single photo.
func (s *Store) Get(ctx context.Context, id string) (*PhotoRecord, error) {
	records, err := s.query(ctx, "id = ?", strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return &records[0], nil
}

// Count returns the number of photos in the snapshot.
func (s *Store) Count() (int, error) {
	var count int

	err := s.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&count)

	return count, err
}

// LastSync returns when the snapshot was last replaced, or the zero time.
func (s *Store) LastSync() (time.Time, error) {
	var t sql.NullTime
	if err := s.db.QueryRow(`SELECT MAX(synced_at) FROM photos`).Scan(&t); err != nil {
		return time.Time{}, err
	}

	return t.Time, nil
}
