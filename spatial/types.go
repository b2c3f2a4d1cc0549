// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds coordinate helpers shared by the geocoding and photo
// packages.
package spatial

import (
	"fmt"
	"math"
	"strings"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// ClusterPrecision is the number of decimals kept by ClusterKey. Three
// decimals is roughly 111m at the equator.
const ClusterPrecision = 3

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether the point lies inside the WGS84 coordinate range.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

// ClusterKey rounds both coordinates to ClusterPrecision decimals. Readings a
// few meters apart share the same key.
func (p Point) ClusterKey() string {
	return roundedCoord(p.Lat) + "," + roundedCoord(p.Lng)
}

// roundedCoord formats v with ClusterPrecision decimals. A value rounding to
// zero from below prints as 0.000, not -0.000.
func roundedCoord(v float64) string {
	s := fmt.Sprintf("%.*f", ClusterPrecision, v)
	if strings.Trim(s, "-0.") == "" {
		return fmt.Sprintf("%.*f", ClusterPrecision, 0.0)
	}

	return s
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(res int) (int64, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("converting %s to h3 cell at res %d: %w", p, res, err)
	}

	return int64(cell), nil
}

// Disk returns the cell containing the point at res and every cell within k
// steps of it.
func (p Point) Disk(res, k int) ([]int64, error) {
	origin, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return nil, fmt.Errorf("converting %s to h3 cell at res %d: %w", p, res, err)
	}

	cells, err := h3.GridDisk(origin, k)
	if err != nil {
		return nil, fmt.Errorf("h3 grid disk around %s: %w", p, err)
	}

	out := make([]int64, 0, len(cells))
	for _, c := range cells {
		out = append(out, int64(c))
	}

	return out, nil
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
