// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"log"
	"strings"

	"github.com/wildframe/folio/spatial"
)

// NearbyRadius is the search radius, in meters, of the nearby refinement.
const NearbyRadius = 1500

// Resolver produces a display name for a coordinate pair. Lookup failures are
// never returned: the resolver falls back to the best name it already has.
type Resolver struct {
	geocoder ReverseGeocoder
	finder   PlaceFinder
}

// NewResolver creates a resolver. Both collaborators are optional: without a
// geocoder ResolvePoint yields the coordinates name, without a finder names
// are not refined.
func NewResolver(geocoder ReverseGeocoder, finder PlaceFinder) *Resolver {
	return &Resolver{geocoder: geocoder, finder: finder}
}

func coordinates(p spatial.Point) Resolution {
	return Resolution{
		Name:   CoordinatesName(p.Lat, p.Lng),
		Source: SourceCoordinates,
		Point:  p,
	}
}

// ResolvePoint reverse geocodes p and resolves the results.
func (r *Resolver) ResolvePoint(ctx context.Context, p spatial.Point) Resolution {
	if r.geocoder == nil {
		return coordinates(p)
	}

	results, err := r.geocoder.ReverseGeocode(ctx, p)
	if err != nil {
		log.Printf("⚠️  Reverse geocoding %s failed: %v", p.ClusterKey(), err)

		return coordinates(p)
	}

	return r.Resolve(ctx, p, results)
}

// Resolve picks the best candidate out of results and names it.
func (r *Resolver) Resolve(ctx context.Context, p spatial.Point, results []GeocodeResult) Resolution {
	best, ok := Select(results)
	if !ok {
		return coordinates(p)
	}

	name, source := ExtractName(best.Result)
	res := Resolution{
		Name:    name,
		Country: Country(best.Result),
		PlaceID: best.Result.PlaceID,
		Source:  source,
		Score:   best.Score,
		Point:   p,
	}

	if refined, refinedSource := r.refine(ctx, p, best.Result.PlaceID); refined != "" {
		res.Name, res.Source = refined, refinedSource
	}

	return res
}

// refine asks the place finder for a better name: place details first, then
// a nearby search. Each step runs only if the previous one produced nothing.
func (r *Resolver) refine(ctx context.Context, p spatial.Point, placeID string) (string, string) {
	if r.finder == nil || placeID == "" {
		return "", ""
	}

	place, err := r.finder.PlaceDetails(ctx, placeID)
	if err == nil && place != nil && strings.TrimSpace(place.Name) != "" {
		return strings.TrimSpace(place.Name), SourcePlaceDetails
	}

	if err != nil {
		log.Printf("⚠️  Place details for %s failed: %v", placeID, err)
	}

	if ctx.Err() != nil {
		return "", ""
	}

	nearby, err := r.finder.NearbySearch(ctx, p, NearbyRadius)
	if err != nil {
		log.Printf("⚠️  Nearby search around %s failed: %v", p.ClusterKey(), err)

		return "", ""
	}

	for _, candidate := range nearby {
		if IsFeature(candidate.Types) && strings.TrimSpace(candidate.Name) != "" {
			return strings.TrimSpace(candidate.Name), SourceNearbySearch
		}
	}

	return "", ""
}
