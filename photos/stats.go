// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package photos

import (
	"time"

	"github.com/wildframe/folio/spatial"
	"github.com/wildframe/folio/utils/textutils"
)

// NoValue is displayed in place of a zero statistic that would read oddly,
// such as zero years active.
const NoValue = "—"

// Stats summarizes a photo collection.
type Stats struct {
	Total       int `json:"total"`
	Landscape   int `json:"landscape"`
	Wildlife    int `json:"wildlife"`
	Locations   int `json:"locations"`
	Countries   int `json:"countries"`
	Species     int `json:"species"`
	YearsActive int `json:"years_active"`
}

// YearsLabel formats YearsActive for display.
func (s Stats) YearsLabel() string {
	if s.YearsActive == 0 {
		return NoValue
	}

	return textutils.FormatInt(int64(s.YearsActive))
}

// Aggregate computes every statistic over records. It never fails: missing or
// malformed fields only lower the affected counts.
func Aggregate(records []PhotoRecord, now time.Time) Stats {
	landscape, wildlife := CountByCategory(records)

	return Stats{
		Total:       len(records),
		Landscape:   landscape,
		Wildlife:    wildlife,
		Locations:   UniqueLocations(records),
		Countries:   UniqueCountries(records),
		Species:     UniqueSpecies(records),
		YearsActive: YearsActive(records, now.Year()),
	}
}

// CountByCategory counts landscape and wildlife photos. Records with an
// unknown category count towards neither.
func CountByCategory(records []PhotoRecord) (landscape, wildlife int) {
	for _, r := range records {
		switch r.Category {
		case Landscape:
			landscape++
		case Wildlife:
			wildlife++
		}
	}

	return landscape, wildlife
}

// UniqueLocations counts distinct places. Coordinates rounded to
// spatial.ClusterPrecision decimals are used when any record has them,
// free-text names otherwise.
func UniqueLocations(records []PhotoRecord) int {
	keys := make(map[string]struct{})

	for _, r := range records {
		if p, ok := r.Point(); ok {
			keys[p.ClusterKey()] = struct{}{}
		}
	}

	if len(keys) > 0 {
		return len(keys)
	}

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.LocationName())
	}

	return textutils.CountDistinct(names)
}

// UniqueCountries counts distinct non-blank countries.
func UniqueCountries(records []PhotoRecord) int {
	countries := make([]string, 0, len(records))
	for _, r := range records {
		countries = append(countries, r.Country())
	}

	return textutils.CountDistinct(countries)
}

// UniqueSpecies counts distinct species names across every record.
func UniqueSpecies(records []PhotoRecord) int {
	var names []string

	for _, r := range records {
		for _, s := range r.Species {
			names = append(names, s.Name)
		}
	}

	return textutils.CountDistinct(names)
}

// YearsActive returns currentYear - earliest capture year + 1, or 0 when no
// record has a usable date. Years after currentYear are ignored.
func YearsActive(records []PhotoRecord, currentYear int) int {
	var (
		earliest int
		found    bool
	)

	for _, r := range records {
		year, ok := r.Dates.Year()
		if !ok || year > currentYear {
			continue
		}

		if !found || year < earliest {
			earliest, found = year, true
		}
	}

	if !found {
		return 0
	}

	return currentYear - earliest + 1
}

// LocationCluster groups photos whose coordinates share a cluster key.
type LocationCluster struct {
	Key      string        `json:"key"`
	Center   spatial.Point `json:"center"`
	PhotoIDs []string      `json:"photo_ids"`
}

// Clusters groups the located records by cluster key, in first-seen order.
// Center is the mean of the member coordinates.
func Clusters(records []PhotoRecord) []LocationCluster {
	var (
		clusters []LocationCluster
		index    = make(map[string]int)
	)

	for _, r := range records {
		p, ok := r.Point()
		if !ok {
			continue
		}

		key := p.ClusterKey()

		i, ok := index[key]
		if !ok {
			i = len(clusters)
			index[key] = i
			clusters = append(clusters, LocationCluster{Key: key})
		}

		c := &clusters[i]
		n := float64(len(c.PhotoIDs))
		c.Center.Lat = (c.Center.Lat*n + p.Lat) / (n + 1)
		c.Center.Lng = (c.Center.Lng*n + p.Lng) / (n + 1)
		c.PhotoIDs = append(c.PhotoIDs, r.ID)
	}

	return clusters
}
