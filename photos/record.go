// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

// Package photos models the photo records published through the CMS and
// aggregates the statistics shown on the category landing pages.
package photos

import (
	"strings"
	"time"

	"github.com/wildframe/folio/spatial"
	"github.com/wildframe/folio/utils/fallback"
)

// Category is the portfolio section a photo belongs to.
type Category string

const (
	Landscape Category = "landscape"
	Wildlife  Category = "wildlife"
)

// Categories lists the valid categories in display order.
var Categories = []Category{Landscape, Wildlife}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == Landscape || c == Wildlife
}

// ParseCategory accepts a category name in any case. "" and "all" select
// every category and yield "".
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return "", true
	}

	c := Category(s)

	return c, c.Valid()
}

// Location is where a photo was taken. Every field is optional.
type Location struct {
	Point   *spatial.Point `json:"point,omitempty"`
	Name    string         `json:"name,omitempty"`
	Country string         `json:"country,omitempty"`
}

// SpeciesRef references a species document.
type SpeciesRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CaptureDates holds the candidate capture dates of a photo, from most to
// least trusted.
type CaptureDates struct {
	Manual        string `json:"manual,omitempty"`
	ExifOriginal  string `json:"exif_original,omitempty"`
	ExifDigitized string `json:"exif_digitized,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006:01:02 15:04:05",
	"2006:01:02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// Source returns the first non-blank date and the name of the field it came
// from.
func (d CaptureDates) Source() (fallback.Source, bool) {
	return fallback.First(
		fallback.Of("manual", d.Manual),
		fallback.Of("exif_original", d.ExifOriginal),
		fallback.Of("exif_digitized", d.ExifDigitized),
	)
}

// Year returns the calendar year of the first available date. An unparseable
// first date yields no year: later fields are not consulted.
func (d CaptureDates) Year() (int, bool) {
	src, ok := d.Source()
	if !ok {
		return 0, false
	}

	t, ok := parseDate(src.Value)
	if !ok {
		return 0, false
	}

	return t.Year(), true
}

// PhotoRecord is a photo as published through the CMS.
type PhotoRecord struct {
	ID        string       `json:"id"`
	Title     string       `json:"title,omitempty"`
	Category  Category     `json:"category"`
	Location  *Location    `json:"location,omitempty"`
	Species   []SpeciesRef `json:"species,omitempty"`
	Dates     CaptureDates `json:"dates"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Point returns the photo coordinates when present and valid.
func (r *PhotoRecord) Point() (spatial.Point, bool) {
	if r.Location == nil || r.Location.Point == nil || !r.Location.Point.Valid() {
		return spatial.Point{}, false
	}

	return *r.Location.Point, true
}

// LocationName returns the free-text location name, or "".
func (r *PhotoRecord) LocationName() string {
	if r.Location == nil {
		return ""
	}

	return strings.TrimSpace(r.Location.Name)
}

// Country returns the country, or "".
func (r *PhotoRecord) Country() string {
	if r.Location == nil {
		return ""
	}

	return strings.TrimSpace(r.Location.Country)
}
