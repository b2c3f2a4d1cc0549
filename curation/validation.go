// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package curation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength  = 200
	maxNotesLength = 1000
)

// Methods a location name can be obtained with.
const (
	MethodGoogleMaps     = "google_maps"
	MethodPlaceDetails   = "place_details"
	MethodNearbySearch   = "nearby_search"
	MethodNearbyJudgment = "nearby_judgment"
	MethodCoordinates    = "coordinates"
	MethodManual         = "manual"
	MethodManualInput    = "manual_input"
)

var validMethods = map[string]bool{
	MethodGoogleMaps:     true,
	MethodPlaceDetails:   true,
	MethodNearbySearch:   true,
	MethodNearbyJudgment: true,
	MethodCoordinates:    true,
	MethodManual:         true,
	MethodManualInput:    true,
}

var validConfidence = map[string]bool{
	"high":   true,
	"medium": true,
	"low":    true,
	"none":   true,
}

// validateCoordinates checks the WGS84 bounds.
func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got %f)", lat)
	}

	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got %f)", lng)
	}

	return nil
}

// validateLocationName checks a name before it is saved.
func validateLocationName(n *LocationName) error {
	if n == nil {
		return errors.New("location name can't be nil")
	}

	if strings.TrimSpace(n.PhotoID) == "" {
		return errors.New("photo id can't be empty")
	}

	if strings.TrimSpace(n.Name) == "" {
		return errors.New("name can't be empty")
	}

	if utf8.RuneCountInString(n.Name) > maxNameLength {
		return fmt.Errorf("name too long (max %d characters)", maxNameLength)
	}

	if n.Point != nil {
		if err := validateCoordinates(n.Point.Lat, n.Point.Lng); err != nil {
			return fmt.Errorf("invalid coordinates: %w", err)
		}
	}

	if n.Method != "" && !validMethods[n.Method] {
		return fmt.Errorf("invalid method: %s", n.Method)
	}

	if n.Confidence != "" && !validConfidence[n.Confidence] {
		return fmt.Errorf("invalid confidence: %s", n.Confidence)
	}

	if utf8.RuneCountInString(n.Notes) > maxNotesLength {
		return fmt.Errorf("notes too long (max %d characters)", maxNotesLength)
	}

	return nil
}

// sanitizeName trims and caps a location name.
func sanitizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")

	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	return name
}
