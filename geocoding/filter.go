// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"regexp"
	"strings"
	"unicode"
)

// Result types that describe an address rather than a place.
var disallowedTypes = []string{
	"street_address",
	"route",
	"street_number",
	"postal_code",
	"postal_code_suffix",
	"plus_code",
	"premise",
	"subpremise",
	"floor",
	"room",
}

var (
	streetSuffixRegex = regexp.MustCompile(`(?i)\b(st|street|rd|road|ave|avenue|blvd|boulevard|ln|lane|dr|drive|way|ct|court|hwy|highway|terrace|crescent|close|place|pl)\.?$`)
	plusCodeRegex     = regexp.MustCompile(`(?i)^[23456789CFGHJMPQRVWX]{4,8}\+[23456789CFGHJMPQRVWX]{2,3}\b`)
)

// looksLikeStreetAddress inspects the formatted address text.
func looksLikeStreetAddress(formatted string) bool {
	formatted = strings.TrimSpace(formatted)
	if formatted == "" {
		return false
	}

	if plusCodeRegex.MatchString(formatted) {
		return true
	}

	first := firstSegment(formatted)
	if first == "" {
		return false
	}

	if unicode.IsDigit([]rune(first)[0]) {
		return true
	}

	// the suffix has to end the segment: "Mount St. Helens" is no street
	return streetSuffixRegex.MatchString(first)
}

// Allowed reports whether a result names a place rather than an address.
func Allowed(r GeocodeResult) bool {
	return !r.HasAny(disallowedTypes...) && !looksLikeStreetAddress(r.FormattedAddress)
}

// Filter drops address-like results. When every result is address-like the
// original list is returned: over-filtering never leaves the caller without
// candidates.
func Filter(results []GeocodeResult) []GeocodeResult {
	kept := make([]GeocodeResult, 0, len(results))

	for _, r := range results {
		if Allowed(r) {
			kept = append(kept, r)
		}
	}

	if len(kept) == 0 {
		return results
	}

	return kept
}

// firstSegment returns the text before the first comma, trimmed.
func firstSegment(s string) string {
	first, _, _ := strings.Cut(s, ",")

	return strings.TrimSpace(first)
}
