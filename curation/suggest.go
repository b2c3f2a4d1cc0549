// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package curation

import (
	"context"
	"errors"
	"fmt"

	"github.com/wildframe/folio/geocoding"
	"github.com/wildframe/folio/photos"
)

// ErrNoCoordinates means the photo can't be resolved and the editor has to
// type a name.
var ErrNoCoordinates = errors.New("photo has no coordinates")

// Suggestion is the name proposed for a photo.
type Suggestion struct {
	PhotoID    string  `json:"photo_id"`
	Name       string  `json:"name"`
	Country    string  `json:"country,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Method     string  `json:"method"`
	Confidence string  `json:"confidence"`
	Notes      string  `json:"notes,omitempty"`
	// Saved is set when the name was already confirmed
	Saved bool `json:"saved"`
}

// Suggester proposes location names. A confirmed name always wins and the
// resolver is only consulted for photos without one.
type Suggester struct {
	names    LocationNameRepository
	resolver *geocoding.Resolver
}

// NewSuggester creates a suggester. resolver may be nil, in which case only
// confirmed names and coordinates are suggested.
func NewSuggester(names LocationNameRepository, resolver *geocoding.Resolver) *Suggester {
	if resolver == nil {
		resolver = geocoding.NewResolver(nil, nil)
	}

	return &Suggester{names: names, resolver: resolver}
}

// Suggest returns the saved name of photo, a nearby confirmed name, or a
// freshly resolved one, in that order.
func (s *Suggester) Suggest(ctx context.Context, photo *photos.PhotoRecord) (*Suggestion, error) {
	saved, err := s.names.Get(photo.ID)
	if err == nil {
		sug := &Suggestion{
			PhotoID:    photo.ID,
			Name:       saved.Name,
			Country:    saved.Country,
			Method:     saved.Method,
			Confidence: saved.Confidence,
			Notes:      saved.Notes,
			Saved:      true,
		}
		if saved.Point != nil {
			sug.Latitude, sug.Longitude = saved.Point.Lat, saved.Point.Lng
		}

		return sug, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p, ok := photo.Point()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCoordinates, photo.ID)
	}

	sug := &Suggestion{PhotoID: photo.ID, Latitude: p.Lat, Longitude: p.Lng}

	nearby, err := s.names.NearbyConfirmed(p)
	switch {
	case err == nil:
		sug.Name = nearby.Name
		sug.Country = nearby.Country
		sug.Method = MethodNearbyJudgment
		sug.Confidence = "medium"
		sug.Notes = fmt.Sprintf("confirmed for %s, %.0fm away", nearby.PhotoID, p.HaversineDistance(nearby.Point))

		return sug, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	res := s.resolver.ResolvePoint(ctx, p)
	sug.Name = res.Name
	sug.Country = res.Country
	sug.Method = methodFor(res.Source)
	sug.Confidence = confidenceFor(res)
	sug.Notes = "source: " + res.Source

	if res.PlaceID != "" {
		sug.Notes += ", place_id: " + res.PlaceID
	}

	return sug, nil
}

func methodFor(source string) string {
	switch source {
	case geocoding.SourcePlaceDetails:
		return MethodPlaceDetails
	case geocoding.SourceNearbySearch:
		return MethodNearbySearch
	case geocoding.SourceCoordinates:
		return MethodCoordinates
	default:
		return MethodGoogleMaps
	}
}

func confidenceFor(res geocoding.Resolution) string {
	switch {
	case res.Source == geocoding.SourceCoordinates || res.Source == geocoding.SourceUnknown:
		return "none"
	case res.Source == geocoding.SourcePlaceDetails || res.Score >= geocoding.FeatureScore:
		return "high"
	case res.Score > 0:
		return "medium"
	default:
		return "low"
	}
}
