// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

// TagScore assigns a preference to a place type tag.
type TagScore struct {
	Tag   string
	Score int
}

// Preferences is the place type priority table, highest first. Places that
// make sense as a photo caption come before administrative areas.
var Preferences = []TagScore{
	{"natural_feature", 1000},
	{"zoo", 950},
	{"park", 900},
	{"aquarium", 880},
	{"airport", 850},
	{"tourist_attraction", 800},
	{"establishment", 600},
	{"point_of_interest", 550},
	{"sublocality", 400},
	{"locality", 300},
	{"administrative_area_level_2", 200},
	{"administrative_area_level_1", 100},
}

// FeatureScore is the lowest score of a named feature, as opposed to an area.
const FeatureScore = 550

// Score returns the best score of any tag in types against Preferences, or 0.
func Score(types []string) int {
	return ScoreWith(Preferences, types)
}

// ScoreWith scores types against an arbitrary table.
func ScoreWith(table []TagScore, types []string) int {
	best := 0

	for _, entry := range table {
		for _, t := range types {
			if t == entry.Tag && entry.Score > best {
				best = entry.Score
			}
		}
	}

	return best
}

// IsFeature reports whether types describe a named feature.
func IsFeature(types []string) bool {
	return Score(types) >= FeatureScore
}

// Candidate is a geocoding result together with its score.
type Candidate struct {
	Result GeocodeResult
	Score  int
	// Index in the list the candidate was scored from
	Index int
}

// Best returns the element with the strictly highest score. Ties keep the
// first one seen, so the outcome is stable for a given input order.
func Best[T any](items []T, score func(T) int) (T, int, bool) {
	var (
		best      T
		bestScore int
		found     bool
	)

	for _, item := range items {
		s := score(item)
		if !found || s > bestScore {
			best, bestScore, found = item, s, true
		}
	}

	return best, bestScore, found
}

// Rank scores every result.
func Rank(results []GeocodeResult) []Candidate {
	candidates := make([]Candidate, len(results))
	for i, r := range results {
		candidates[i] = Candidate{Result: r, Score: Score(r.Types), Index: i}
	}

	return candidates
}

// Select filters the results and picks the best scored candidate.
func Select(results []GeocodeResult) (Candidate, bool) {
	c, _, ok := Best(Rank(Filter(results)), func(c Candidate) int { return c.Score })

	return c, ok
}
