// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildframe/folio/config"
	"github.com/wildframe/folio/spatial"
)

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer

	w := &logWriter{writer: &buf}
	_, err := w.Write([]byte("✅ done\n"))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} ✅ done\n$`), buf.String())
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("52.8734", "-118.0814")
	require.NoError(t, err)
	assert.Equal(t, spatial.Point{Lat: 52.8734, Lng: -118.0814}, p)

	_, err = parsePoint("north", "1")
	require.Error(t, err)

	_, err = parsePoint("1", "190")
	require.Error(t, err)
}

func TestOpenStores(t *testing.T) {
	cfg := &config.Config{DB: config.DBConfig{Path: filepath.Join(t.TempDir(), "nested", "folio.db")}}

	s, err := openStores(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	n, err := s.photos.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.names.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewResolverWithoutClient(t *testing.T) {
	res := newResolver(nil).ResolvePoint(t.Context(), spatial.Point{Lat: 51.4545, Lng: -2.5879})
	assert.Equal(t, "Location 51.4545, -2.5879", res.Name)
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"locations", "resolve"},
		{"locations", "suggest"},
		{"photos", "sync"},
		{"photos", "stats"},
		{"photos", "clusters"},
		{"curation", "serve"},
		{"curation", "store"},
		{"curation", "load"},
		{"site", "serve"},
		{"debug", "resolve"},
	} {
		c, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], c.Name())
	}
}
