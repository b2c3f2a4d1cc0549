// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding turns coordinates into the place names shown next to a
// photo, preferring natural features, parks and points of interest over street
// addresses.
package geocoding

import (
	"context"
	"slices"

	"github.com/wildframe/folio/spatial"
)

// AddressComponent is one element of a geocoding result's structured address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Has reports whether the component carries the given type tag.
func (c AddressComponent) Has(tag string) bool {
	return slices.Contains(c.Types, tag)
}

// GeocodeResult is one candidate returned by a reverse geocoding lookup.
type GeocodeResult struct {
	Types             []string           `json:"types"`
	AddressComponents []AddressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Name              string             `json:"name,omitempty"`
	PlaceID           string             `json:"place_id,omitempty"`
	Point             spatial.Point      `json:"point"`
}

// HasAny reports whether the result is tagged with any of tags.
func (r GeocodeResult) HasAny(tags ...string) bool {
	for _, t := range tags {
		if slices.Contains(r.Types, t) {
			return true
		}
	}

	return false
}

// Component returns the first address component tagged with tag.
func (r GeocodeResult) Component(tag string) (AddressComponent, bool) {
	for _, c := range r.AddressComponents {
		if c.Has(tag) {
			return c, true
		}
	}

	return AddressComponent{}, false
}

// Place is a named point returned by a place details or nearby search lookup.
type Place struct {
	PlaceID string        `json:"place_id"`
	Name    string        `json:"name"`
	Types   []string      `json:"types"`
	Point   spatial.Point `json:"point"`
}

// Where a resolved name came from.
const (
	SourcePrimaryName      = "primary_name"
	SourceCompound         = "compound"
	SourceComponent        = "component"
	SourceFormattedAddress = "formatted_address"
	SourcePlaceDetails     = "place_details"
	SourceNearbySearch     = "nearby_search"
	SourceCoordinates      = "coordinates"
	SourceUnknown          = "unknown"
)

// Resolution is the outcome of resolving a coordinate pair.
type Resolution struct {
	Name    string        `json:"name"`
	Country string        `json:"country,omitempty"`
	PlaceID string        `json:"place_id,omitempty"`
	Source  string        `json:"source"`
	Score   int           `json:"score"`
	Point   spatial.Point `json:"point"`
}

// ReverseGeocoder returns the candidates for a coordinate pair, in provider
// order.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, p spatial.Point) ([]GeocodeResult, error)
}

// PlaceFinder looks up named places, used to refine a resolved name.
type PlaceFinder interface {
	PlaceDetails(ctx context.Context, placeID string) (*Place, error)
	NearbySearch(ctx context.Context, p spatial.Point, radius int) ([]Place, error)
}
