// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package photos

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []PhotoRecord

func (s staticSource) ListPhotos(_ context.Context, category Category) ([]PhotoRecord, error) {
	var out []PhotoRecord

	for _, r := range s {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}

	return out, nil
}

type staticOverrides struct {
	overrides map[string]Override
	err       error
}

func (s staticOverrides) Overrides() (map[string]Override, error) {
	return s.overrides, s.err
}

func TestApplyOverrides(t *testing.T) {
	records := sampleRecords()

	got := ApplyOverrides(records, map[string]Override{
		"photo-1": {Name: "Pyramid Island"},
		"photo-3": {Name: "Cairngorms", Country: "UK"},
		"photo-2": {Name: "  "},
	})

	assert.Equal(t, "Pyramid Island", got[1].LocationName())
	assert.Equal(t, "Canada", got[1].Country())
	assert.NotNil(t, got[1].Location.Point)

	assert.Equal(t, "Cairngorms", got[2].LocationName())
	assert.Equal(t, "UK", got[2].Country())

	assert.Equal(t, "Somerset Levels", got[0].LocationName())

	// input untouched
	assert.Equal(t, "Pyramid Lake", records[1].LocationName())
	assert.Nil(t, records[2].Location)
}

func TestOverlaySource(t *testing.T) {
	src := OverlaySource{
		Source:    staticSource(sampleRecords()),
		Overrides: staticOverrides{overrides: map[string]Override{"photo-3": {Name: "Cairngorms", Country: "UK"}}},
	}

	records, err := src.ListPhotos(t.Context(), Wildlife)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Cairngorms", records[1].LocationName())

	src.Overrides = staticOverrides{err: errors.New("table missing")}

	records, err = src.ListPhotos(t.Context(), Wildlife)
	require.NoError(t, err)
	assert.Nil(t, records[1].Location)
}
