// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

// Package fallback picks the first usable value out of an ordered list of
// named sources.
package fallback

import "strings"

// Source is a candidate value tagged with where it came from.
type Source struct {
	Name  string
	Value string
}

// Of builds a Source.
func Of(name, value string) Source {
	return Source{Name: name, Value: value}
}

// First returns the first source whose value is not blank, in the order given.
// The returned value is trimmed.
func First(sources ...Source) (Source, bool) {
	for _, s := range sources {
		if v := strings.TrimSpace(s.Value); v != "" {
			return Source{Name: s.Name, Value: v}, true
		}
	}

	return Source{}, false
}

// Lazy is a source whose value is only computed when every previous source was
// blank.
type Lazy struct {
	Name  string
	Value func() string
}

// FirstLazy behaves like First, evaluating each source on demand.
func FirstLazy(sources ...Lazy) (Source, bool) {
	for _, s := range sources {
		if s.Value == nil {
			continue
		}

		if v := strings.TrimSpace(s.Value()); v != "" {
			return Source{Name: s.Name, Value: v}, true
		}
	}

	return Source{}, false
}
