// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestLooksLikeStreetAddress(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"123 Main St, Springfield", true},
		{"Harbour Road, Bristol", true},
		{"Elm Ave., Toronto", true},
		{"9C3XGV4C+XV", true},
		{"9C3XGV4C+XV Bristol, UK", true},
		{"Jasper National Park, AB, Canada", false},
		{"Jasper, AB, Canada", false},
		{"Lake Louise, Alberta", false},
		{"Stanley Park, Vancouver", false},
		{"Mount St. Helens, Washington", false},
		{"St Kilda, UK", false},
		{"Way of the Cross Chapel, Lourdes", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeStreetAddress(tt.input))
		})
	}
}

func TestFilter(t *testing.T) {
	street := GeocodeResult{Types: []string{"street_address"}, FormattedAddress: "123 Main St, Springfield"}
	route := GeocodeResult{Types: []string{"route"}, FormattedAddress: "Icefields Pkwy, Alberta"}
	postal := GeocodeResult{Types: []string{"postal_code"}, FormattedAddress: "T0E 1E0, Canada"}
	textual := GeocodeResult{Types: []string{"establishment"}, FormattedAddress: "12 Connaught Dr, Jasper"}
	park := GeocodeResult{Types: []string{"park"}, FormattedAddress: "Jasper National Park, AB, Canada"}
	town := GeocodeResult{Types: []string{"locality", "political"}, FormattedAddress: "Jasper, AB, Canada"}

	t.Run("drops addresses", func(t *testing.T) {
		got := Filter([]GeocodeResult{street, park, route, postal, textual, town})
		if diff := cmp.Diff([]GeocodeResult{park, town}, got); diff != "" {
			t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("falls back to the unfiltered list", func(t *testing.T) {
		all := []GeocodeResult{street, route, postal}
		got := Filter(all)
		if diff := cmp.Diff(all, got); diff != "" {
			t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Filter(nil))
	})
}

func TestSelectKeepsSaintNamedFeature(t *testing.T) {
	results := []GeocodeResult{
		{Types: []string{"natural_feature"}, FormattedAddress: "Mount St. Helens, Washington, USA"},
		{Types: []string{"locality", "political"}, FormattedAddress: "Cougar, WA, USA"},
	}

	best, ok := Select(results)
	assert.True(t, ok)
	assert.Equal(t, "Mount St. Helens, Washington, USA", best.Result.FormattedAddress)
	assert.Equal(t, 1000, best.Score)
}
