// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"fmt"
	"slices"

	"github.com/wildframe/folio/utils/fallback"
)

// UnknownLocation is the name of last resort.
const UnknownLocation = "Unknown location"

// componentGroups is the order in which address components are tried as a
// name. Each group matches a component carrying any of its tags.
var componentGroups = [][]string{
	{"establishment"},
	{"point_of_interest"},
	{"tourist_attraction"},
	{"natural_feature"},
	{"park"},
	{"zoo"},
	{"aquarium"},
	{"museum"},
	{"art_gallery"},
	{"stadium"},
	{"amusement_park"},
	{"theme_park"},
	{"campground"},
	{"church", "place_of_worship"},
	{"premise"},
	{"subpremise"},
	{"neighborhood"},
	{"colloquial_area"},
	{"locality"},
	{"sublocality"},
	{"administrative_area_level_3"},
	{"administrative_area_level_2"},
	{"administrative_area_level_1"},
	{"country"},
}

// firstAreaGroup is the index of the first group naming an area around the
// place rather than the place itself.
var firstAreaGroup = slices.IndexFunc(componentGroups, func(g []string) bool {
	return g[0] == "neighborhood"
})

// areaTypes mark results describing a town or district.
var areaTypes = []string{
	"locality",
	"sublocality",
	"administrative_area_level_2",
	"administrative_area_level_3",
}

func componentName(c AddressComponent) string {
	if c.LongName != "" {
		return c.LongName
	}

	return c.ShortName
}

func (r GeocodeResult) componentValue(tag string) string {
	c, ok := r.Component(tag)
	if !ok {
		return ""
	}

	return componentName(c)
}

// componentLookup walks componentGroups. Feature results skip the area
// groups: a park's locality component names the town, not the park.
func componentLookup(r GeocodeResult) string {
	groups := componentGroups
	if IsFeature(r.Types) {
		groups = groups[:firstAreaGroup]
	}

	for _, group := range groups {
		for _, c := range r.AddressComponents {
			if !slices.ContainsFunc(group, c.Has) {
				continue
			}

			if name := componentName(c); name != "" {
				return name
			}
		}
	}

	return ""
}

func join(a, b string) string {
	if b == "" || a == b {
		return a
	}

	return fmt.Sprintf("%s, %s", a, b)
}

// compoundName combines town and region components for area results, e.g.
// "Jasper, Alberta". It returns "" for any other kind of result.
func compoundName(r GeocodeResult) string {
	if !r.HasAny(areaTypes...) {
		return ""
	}

	var (
		sub     = r.componentValue("sublocality")
		loc     = r.componentValue("locality")
		admin3  = r.componentValue("administrative_area_level_3")
		admin2  = r.componentValue("administrative_area_level_2")
		admin1  = r.componentValue("administrative_area_level_1")
		country = r.componentValue("country")
	)

	switch {
	case sub != "" && loc != "":
		return join(sub, loc)
	case loc != "" && admin1 != "":
		return join(loc, admin1)
	case admin2 != "" && admin1 != "":
		return join(admin2, admin1)
	case admin3 != "" && admin1 != "":
		return join(admin3, admin1)
	case loc != "":
		return join(loc, country)
	case admin2 != "":
		return join(admin2, country)
	}

	return ""
}

// ExtractName picks the display name of a selected result along with the
// source it came from. Area results prefer the compound name over the
// component walk, which would otherwise always answer first.
func ExtractName(r GeocodeResult) (name, source string) {
	s, ok := fallback.FirstLazy(
		fallback.Lazy{Name: SourcePrimaryName, Value: func() string { return r.Name }},
		fallback.Lazy{Name: SourceCompound, Value: func() string { return compoundName(r) }},
		fallback.Lazy{Name: SourceComponent, Value: func() string { return componentLookup(r) }},
		fallback.Lazy{Name: SourceFormattedAddress, Value: func() string { return firstSegment(r.FormattedAddress) }},
	)
	if !ok {
		return UnknownLocation, SourceUnknown
	}

	return s.Value, s.Name
}

// Country returns the country component of a result, independently of its
// display name.
func Country(r GeocodeResult) string {
	return r.componentValue("country")
}

// CoordinatesName is the name used when nothing better is known.
func CoordinatesName(lat, lng float64) string {
	return fmt.Sprintf("Location %.4f, %.4f", lat, lng)
}
