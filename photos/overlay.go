// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package photos

import (
	"context"
	"log"
	"strings"
)

// Override is a human-confirmed location name for a photo. It always wins
// over the name synced from the CMS.
type Override struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// OverrideSource returns the confirmed names keyed by photo id.
type OverrideSource interface {
	Overrides() (map[string]Override, error)
}

// ApplyOverrides returns a copy of records with the confirmed names applied.
// A blank override country keeps the synced country.
func ApplyOverrides(records []PhotoRecord, overrides map[string]Override) []PhotoRecord {
	out := make([]PhotoRecord, len(records))

	for i, r := range records {
		o, ok := overrides[r.ID]
		if !ok || strings.TrimSpace(o.Name) == "" {
			out[i] = r

			continue
		}

		loc := Location{}
		if r.Location != nil {
			loc = *r.Location
		}

		loc.Name = strings.TrimSpace(o.Name)
		if c := strings.TrimSpace(o.Country); c != "" {
			loc.Country = c
		}

		r.Location = &loc
		out[i] = r
	}

	return out
}

// OverlaySource decorates a Source with confirmed names.
type OverlaySource struct {
	Source    Source
	Overrides OverrideSource
}

// ListPhotos lists the underlying source and applies the overrides. Failing to
// read the overrides only loses the confirmed names.
func (o OverlaySource) ListPhotos(ctx context.Context, category Category) ([]PhotoRecord, error) {
	records, err := o.Source.ListPhotos(ctx, category)
	if err != nil || o.Overrides == nil {
		return records, err
	}

	overrides, err := o.Overrides.Overrides()
	if err != nil {
		log.Printf("⚠️  Reading confirmed location names: %v", err)

		return records, nil
	}

	return ApplyOverrides(records, overrides), nil
}
