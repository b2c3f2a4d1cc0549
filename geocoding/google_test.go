// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildframe/folio/spatial"
)

const (
	geocodeURL = DefaultGoogleMapsBaseURL + "/maps/api/geocode/json"
	detailsURL = DefaultGoogleMapsBaseURL + "/maps/api/place/details/json"
	nearbyURL  = DefaultGoogleMapsBaseURL + "/maps/api/place/nearbysearch/json"
)

const jasperGeocodeJSON = `{
  "status": "OK",
  "results": [
    {
      "types": ["park", "point_of_interest"],
      "formatted_address": "Jasper National Park, AB, Canada",
      "place_id": "park-1",
      "geometry": {"location": {"lat": 52.87, "lng": -118.08}},
      "address_components": [
        {"long_name": "Canada", "short_name": "CA", "types": ["country", "political"]}
      ]
    },
    {
      "types": ["locality", "political"],
      "formatted_address": "Jasper, AB, Canada",
      "place_id": "town-1",
      "geometry": {"location": {"lat": 52.88, "lng": -118.09}}
    }
  ]
}`

func activate(t *testing.T) {
	t.Helper()

	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func TestReverseGeocode(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, geocodeURL,
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "test-key", q.Get("key"))
			assert.Equal(t, "52.873400,-118.081400", q.Get("latlng"))
			assert.Equal(t, "en", q.Get("language"))

			return httpmock.NewStringResponse(http.StatusOK, jasperGeocodeJSON), nil
		})

	client := NewGoogleMapsClient("test-key", &GoogleMapsOptions{Language: "en"})

	results, err := client.ReverseGeocode(t.Context(), jasper)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "park-1", results[0].PlaceID)
	assert.Equal(t, []string{"park", "point_of_interest"}, results[0].Types)
	assert.Equal(t, spatial.Point{Lat: 52.87, Lng: -118.08}, results[0].Point)
	assert.Equal(t, "Canada", Country(results[0]))

	// second lookup is served from the cache
	_, err = client.ReverseGeocode(t.Context(), jasper)
	require.NoError(t, err)

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Equal(t, int64(1), client.Metrics.APICalls.Load())
	assert.Equal(t, int64(1), client.Metrics.CacheHits.Load())
}

func TestReverseGeocodeWithoutCache(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, geocodeURL,
		httpmock.NewStringResponder(http.StatusOK, jasperGeocodeJSON))

	client := NewGoogleMapsClient("test-key", &GoogleMapsOptions{CacheTTL: -1})

	for range 2 {
		_, err := client.ReverseGeocode(t.Context(), jasper)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, httpmock.GetTotalCallCount())
	assert.Zero(t, client.Metrics.CacheHits.Load())
}

func TestReverseGeocodeZeroResults(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, geocodeURL,
		httpmock.NewStringResponder(http.StatusOK, `{"status": "ZERO_RESULTS", "results": []}`))

	client := NewGoogleMapsClient("test-key", nil)

	results, err := client.ReverseGeocode(t.Context(), spatial.Point{Lat: 0, Lng: -150})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReverseGeocodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		checkType func(error) bool
	}{
		{
			name:      "over query limit",
			status:    http.StatusOK,
			body:      `{"status": "OVER_QUERY_LIMIT", "error_message": "You have exceeded your daily request quota"}`,
			checkType: IsQuotaExceededError,
		},
		{
			name:   "request denied",
			status: http.StatusOK,
			body:   `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`,
			checkType: func(err error) bool {
				return isType(err, ErrorTypeInvalidRequest)
			},
		},
		{
			name:      "http 429",
			status:    http.StatusTooManyRequests,
			body:      "slow down",
			checkType: IsRateLimitError,
		},
		{
			name:   "http 503",
			status: http.StatusServiceUnavailable,
			checkType: func(err error) bool {
				return isType(err, ErrorTypeNetworkError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activate(t)

			httpmock.RegisterResponder(http.MethodGet, geocodeURL,
				httpmock.NewStringResponder(tt.status, tt.body))

			client := NewGoogleMapsClient("test-key", nil)

			_, err := client.ReverseGeocode(t.Context(), jasper)
			require.Error(t, err)
			assert.True(t, tt.checkType(err), "unexpected error %v", err)
			assert.Equal(t, int64(1), client.Metrics.Errors.Load())
		})
	}
}

func TestReverseGeocodeTrace(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, geocodeURL,
		httpmock.NewStringResponder(http.StatusOK, jasperGeocodeJSON))

	var trace bytes.Buffer

	client := NewGoogleMapsClient("super-secret", &GoogleMapsOptions{Trace: &trace})

	_, err := client.ReverseGeocode(t.Context(), jasper)
	require.NoError(t, err)

	assert.Contains(t, trace.String(), "key=REDACTED")
	assert.NotContains(t, trace.String(), "super-secret")
}

func TestPlaceDetails(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, detailsURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "park-1", req.URL.Query().Get("place_id"))

			return httpmock.NewStringResponse(http.StatusOK, `{
				"status": "OK",
				"result": {
					"name": "Jasper National Park of Canada",
					"place_id": "park-1",
					"types": ["park", "point_of_interest"],
					"geometry": {"location": {"lat": 52.87, "lng": -118.08}}
				}
			}`), nil
		})

	client := NewGoogleMapsClient("test-key", nil)

	place, err := client.PlaceDetails(t.Context(), "park-1")
	require.NoError(t, err)
	assert.Equal(t, "Jasper National Park of Canada", place.Name)
	assert.True(t, IsFeature(place.Types))

	_, err = client.PlaceDetails(t.Context(), "park-1")
	require.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestPlaceDetailsNotFound(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, detailsURL,
		httpmock.NewStringResponder(http.StatusOK, `{"status": "NOT_FOUND"}`))

	client := NewGoogleMapsClient("test-key", nil)

	_, err := client.PlaceDetails(t.Context(), "gone")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestNearbySearch(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, nearbyURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "1500", req.URL.Query().Get("radius"))

			return httpmock.NewStringResponse(http.StatusOK, `{
				"status": "OK",
				"results": [
					{"name": "Jasper", "place_id": "town-1", "types": ["locality"]},
					{"name": "Pyramid Lake", "place_id": "lake-1", "types": ["natural_feature"]}
				]
			}`), nil
		})

	client := NewGoogleMapsClient("test-key", nil)

	places, err := client.NearbySearch(t.Context(), jasper, NearbyRadius)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Pyramid Lake", places[1].Name)
}

func TestResolverWithGoogleMaps(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, geocodeURL,
		httpmock.NewStringResponder(http.StatusOK, jasperGeocodeJSON))
	httpmock.RegisterResponder(http.MethodGet, detailsURL,
		httpmock.NewStringResponder(http.StatusOK, `{"status": "OK", "result": {"name": "Jasper National Park of Canada"}}`))

	client := NewGoogleMapsClient("test-key", nil)

	got := NewResolver(client, client).ResolvePoint(t.Context(), jasper)
	assert.Equal(t, "Jasper National Park of Canada", got.Name)
	assert.Equal(t, SourcePlaceDetails, got.Source)
	assert.Equal(t, "Canada", got.Country)
	assert.Equal(t, "park-1", got.PlaceID)
}

func TestSearch(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, geocodeURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Jasper National Park", req.URL.Query().Get("address"))

			return httpmock.NewStringResponse(http.StatusOK, jasperGeocodeJSON), nil
		})

	client := NewGoogleMapsClient("test-key", nil)

	results, err := client.Search(t.Context(), "  Jasper National Park ")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = client.Search(t.Context(), " ")
	require.Error(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestDecodeGeocodeResponse(t *testing.T) {
	results, err := DecodeGeocodeResponse(strings.NewReader(jasperGeocodeJSON))
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = DecodeGeocodeResponse(strings.NewReader(`{"status": "ZERO_RESULTS", "results": []}`))
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = DecodeGeocodeResponse(strings.NewReader(`{"status": "REQUEST_DENIED"}`))
	require.Error(t, err)

	_, err = DecodeGeocodeResponse(strings.NewReader(`not json`))
	require.Error(t, err)
}

func TestCachedResultsAreCopies(t *testing.T) {
	activate(t)

	httpmock.RegisterResponder(http.MethodGet, geocodeURL,
		httpmock.NewStringResponder(http.StatusOK, jasperGeocodeJSON))
	httpmock.RegisterResponder(http.MethodGet, detailsURL,
		httpmock.NewStringResponder(http.StatusOK, `{"status": "OK", "result": {"name": "Pyramid Lake", "types": ["natural_feature"]}}`))
	httpmock.RegisterResponder(http.MethodGet, nearbyURL,
		httpmock.NewStringResponder(http.StatusOK, `{"status": "OK", "results": [{"name": "Pyramid Lake", "types": ["natural_feature"]}]}`))

	client := NewGoogleMapsClient("test-key", nil)

	results, err := client.ReverseGeocode(t.Context(), jasper)
	require.NoError(t, err)
	results[0].FormattedAddress = "changed"
	results[0].Types[0] = "changed"
	results[0].AddressComponents[0].Types[0] = "changed"

	place, err := client.PlaceDetails(t.Context(), "lake-1")
	require.NoError(t, err)
	place.Types[0] = "changed"

	places, err := client.NearbySearch(t.Context(), jasper, NearbyRadius)
	require.NoError(t, err)
	places[0].Name = "changed"
	places[0].Types[0] = "changed"

	results, err = client.ReverseGeocode(t.Context(), jasper)
	require.NoError(t, err)
	assert.Equal(t, "Jasper National Park, AB, Canada", results[0].FormattedAddress)
	assert.Equal(t, []string{"park", "point_of_interest"}, results[0].Types)
	assert.Equal(t, []string{"country", "political"}, results[0].AddressComponents[0].Types)

	place, err = client.PlaceDetails(t.Context(), "lake-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"natural_feature"}, place.Types)

	places, err = client.NearbySearch(t.Context(), jasper, NearbyRadius)
	require.NoError(t, err)
	assert.Equal(t, "Pyramid Lake", places[0].Name)
	assert.Equal(t, []string{"natural_feature"}, places[0].Types)

	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}
