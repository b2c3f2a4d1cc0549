// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package photos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wildframe/folio/spatial"
)

func TestCaptureDatesYear(t *testing.T) {
	tests := []struct {
		name     string
		dates    CaptureDates
		wantYear int
		wantOK   bool
	}{
		{"manual date", CaptureDates{Manual: "2019-06-01"}, 2019, true},
		{"manual wins over exif", CaptureDates{Manual: "2018-01-01", ExifOriginal: "2015:03:04 10:11:12"}, 2018, true},
		{"exif original", CaptureDates{ExifOriginal: "2015:03:04 10:11:12"}, 2015, true},
		{"exif digitized", CaptureDates{ExifDigitized: "2014:12:31"}, 2014, true},
		{"rfc3339", CaptureDates{Manual: "2021-07-04T18:30:00Z"}, 2021, true},
		{"local timestamp", CaptureDates{ExifOriginal: "2020-02-02T02:02:02"}, 2020, true},
		{"blank manual is skipped", CaptureDates{Manual: "  ", ExifOriginal: "2016:05:05"}, 2016, true},
		{"unparseable first source decides", CaptureDates{Manual: "summer 2019", ExifOriginal: "2015:03:04"}, 0, false},
		{"nothing", CaptureDates{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, ok := tt.dates.Year()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestCaptureDatesSource(t *testing.T) {
	src, ok := CaptureDates{ExifDigitized: "2014:12:31"}.Source()
	assert.True(t, ok)
	assert.Equal(t, "exif_digitized", src.Name)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input  string
		want   Category
		wantOK bool
	}{
		{"landscape", Landscape, true},
		{" Wildlife ", Wildlife, true},
		{"all", "", true},
		{"", "", true},
		{"portrait", "portrait", false},
	}

	for _, tt := range tests {
		got, ok := ParseCategory(tt.input)
		assert.Equal(t, tt.want, got, tt.input)
		assert.Equal(t, tt.wantOK, ok, tt.input)
	}
}

func TestPhotoRecordAccessors(t *testing.T) {
	var r PhotoRecord

	_, ok := r.Point()
	assert.False(t, ok)
	assert.Empty(t, r.LocationName())
	assert.Empty(t, r.Country())

	r.Location = &Location{Point: &spatial.Point{Lat: 95, Lng: 0}, Name: " Skye ", Country: " UK"}

	_, ok = r.Point()
	assert.False(t, ok, "out of range coordinates are ignored")
	assert.Equal(t, "Skye", r.LocationName())
	assert.Equal(t, "UK", r.Country())
}
