// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/wildframe/folio/spatial"
	"github.com/wildframe/folio/utils/httputils"
)

// DefaultGoogleMapsBaseURL is the Google Maps Platform web service root.
const DefaultGoogleMapsBaseURL = "https://maps.googleapis.com"

// GoogleMapsOptions configures a GoogleMapsClient.
type GoogleMapsOptions struct {
	// BaseURL overrides DefaultGoogleMapsBaseURL
	BaseURL string

	// Timeout of each HTTP exchange, defaults to 10s
	Timeout time.Duration

	// CacheTTL of successful lookups, defaults to 24h. Negative disables caching
	CacheTTL time.Duration

	// Language of the returned names, e.g. "en"
	Language string

	// Trace, when set, receives a dump of every request and response
	Trace io.Writer
}

// GoogleMapsMetrics counts API calls and cache hits.
type GoogleMapsMetrics struct {
	APICalls  atomic.Int64
	CacheHits atomic.Int64
	Errors    atomic.Int64
}

// GoogleMapsClient talks to the Geocoding, Place Details and Nearby Search
// APIs. It implements ReverseGeocoder and PlaceFinder.
type GoogleMapsClient struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	cache      *cache.Cache
	Metrics    GoogleMapsMetrics
}

// NewGoogleMapsClient creates a new Google Maps client.
func NewGoogleMapsClient(apiKey string, opts *GoogleMapsOptions) *GoogleMapsClient {
	if opts == nil {
		opts = &GoogleMapsOptions{}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGoogleMapsBaseURL
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}

	return &GoogleMapsClient{
		apiKey:   apiKey,
		baseURL:  baseURL,
		language: opts.Language,
		httpClient: httputils.NewClient(httputils.ClientOptions{
			Timeout: timeout,
			Trace:   opts.Trace,
		}),
		cache: c,
	}
}

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleGeometry struct {
	Location googleLatLng `json:"location"`
}

type googleGeocodeResult struct {
	AddressComponents []AddressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          googleGeometry     `json:"geometry"`
	PlaceID           string             `json:"place_id"`
	Types             []string           `json:"types"`
}

type googleGeocodeResponse struct {
	Results      []googleGeocodeResult `json:"results"`
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message"`
}

func (r googleGeocodeResponse) toResults() []GeocodeResult {
	results := make([]GeocodeResult, 0, len(r.Results))
	for _, res := range r.Results {
		results = append(results, GeocodeResult{
			Types:             res.Types,
			AddressComponents: res.AddressComponents,
			FormattedAddress:  res.FormattedAddress,
			PlaceID:           res.PlaceID,
			Point:             spatial.Point{Lat: res.Geometry.Location.Lat, Lng: res.Geometry.Location.Lng},
		})
	}

	return results
}

type googlePlace struct {
	Name     string         `json:"name"`
	PlaceID  string         `json:"place_id"`
	Types    []string       `json:"types"`
	Geometry googleGeometry `json:"geometry"`
}

func (p googlePlace) toPlace() Place {
	return Place{
		PlaceID: p.PlaceID,
		Name:    p.Name,
		Types:   p.Types,
		Point:   spatial.Point{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng},
	}
}

type googleDetailsResponse struct {
	Result       *googlePlace `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

type googleNearbyResponse struct {
	Results      []googlePlace `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

func latLng(p spatial.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// get performs a GET against path and decodes the JSON body into out.
func (g *GoogleMapsClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", g.apiKey)

	if g.language != "" {
		params.Set("language", g.language)
	}

	reqURL := g.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	g.Metrics.APICalls.Add(1)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.Metrics.Errors.Add(1)

		errType := ErrorTypeNetworkError
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			errType = ErrorTypeTimeout
		}

		return &GeocodingError{Type: errType, Message: "google maps request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.Metrics.Errors.Add(1)

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return ClassifyHTTPError(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		g.Metrics.Errors.Add(1)

		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func (g *GoogleMapsClient) cached(key string) (any, bool) {
	if g.cache == nil {
		return nil, false
	}

	v, ok := g.cache.Get(key)
	if ok {
		g.Metrics.CacheHits.Add(1)
	}

	return v, ok
}

// cloneResults deep copies results so callers never share memory with the
// cache.
func cloneResults(results []GeocodeResult) []GeocodeResult {
	out := slices.Clone(results)
	for i := range out {
		out[i].Types = slices.Clone(out[i].Types)
		out[i].AddressComponents = slices.Clone(out[i].AddressComponents)

		for j := range out[i].AddressComponents {
			out[i].AddressComponents[j].Types = slices.Clone(out[i].AddressComponents[j].Types)
		}
	}

	return out
}

func clonePlace(p Place) Place {
	p.Types = slices.Clone(p.Types)

	return p
}

func clonePlaces(places []Place) []Place {
	out := make([]Place, len(places))
	for i, p := range places {
		out[i] = clonePlace(p)
	}

	return out
}

func (g *GoogleMapsClient) store(key string, v any) {
	if g.cache != nil {
		g.cache.SetDefault(key, v)
	}
}

// ReverseGeocode returns the geocoding candidates for p in provider order. No
// results is not an error.
func (g *GoogleMapsClient) ReverseGeocode(ctx context.Context, p spatial.Point) ([]GeocodeResult, error) {
	key := "geocode:" + latLng(p)
	if v, ok := g.cached(key); ok {
		if results, ok := v.([]GeocodeResult); ok {
			return cloneResults(results), nil
		}
	}

	params := url.Values{}
	params.Set("latlng", latLng(p))

	var gmResp googleGeocodeResponse
	if err := g.get(ctx, "/maps/api/geocode/json", params, &gmResp); err != nil {
		return nil, fmt.Errorf("reverse geocoding %s: %w", latLng(p), err)
	}

	if gmResp.Status == "ZERO_RESULTS" {
		g.store(key, []GeocodeResult{})

		return []GeocodeResult{}, nil
	}

	if gErr := ClassifyStatus(gmResp.Status, gmResp.ErrorMessage); gErr != nil {
		g.Metrics.Errors.Add(1)

		return nil, fmt.Errorf("reverse geocoding %s: %w", latLng(p), gErr)
	}

	results := gmResp.toResults()

	g.store(key, cloneResults(results))

	return results, nil
}

// PlaceDetails returns the named place behind placeID.
func (g *GoogleMapsClient) PlaceDetails(ctx context.Context, placeID string) (*Place, error) {
	key := "details:" + placeID
	if v, ok := g.cached(key); ok {
		if place, ok := v.(Place); ok {
			place = clonePlace(place)

			return &place, nil
		}
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,place_id,types,geometry")

	var gmResp googleDetailsResponse
	if err := g.get(ctx, "/maps/api/place/details/json", params, &gmResp); err != nil {
		return nil, fmt.Errorf("place details %s: %w", placeID, err)
	}

	if gErr := ClassifyStatus(gmResp.Status, gmResp.ErrorMessage); gErr != nil {
		g.Metrics.Errors.Add(1)

		return nil, fmt.Errorf("place details %s: %w", placeID, gErr)
	}

	if gmResp.Result == nil {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "place details without result"}
	}

	place := gmResp.Result.toPlace()
	g.store(key, clonePlace(place))

	return &place, nil
}

// NearbySearch returns the places within radius meters of p, ranked by the
// provider's prominence order.
func (g *GoogleMapsClient) NearbySearch(ctx context.Context, p spatial.Point, radius int) ([]Place, error) {
	key := fmt.Sprintf("nearby:%s:%d", latLng(p), radius)
	if v, ok := g.cached(key); ok {
		if places, ok := v.([]Place); ok {
			return clonePlaces(places), nil
		}
	}

	params := url.Values{}
	params.Set("location", latLng(p))
	params.Set("radius", fmt.Sprint(radius))

	var gmResp googleNearbyResponse
	if err := g.get(ctx, "/maps/api/place/nearbysearch/json", params, &gmResp); err != nil {
		return nil, fmt.Errorf("nearby search %s: %w", latLng(p), err)
	}

	if gmResp.Status == "ZERO_RESULTS" {
		return []Place{}, nil
	}

	if gErr := ClassifyStatus(gmResp.Status, gmResp.ErrorMessage); gErr != nil {
		g.Metrics.Errors.Add(1)

		return nil, fmt.Errorf("nearby search %s: %w", latLng(p), gErr)
	}

	places := make([]Place, 0, len(gmResp.Results))
	for _, r := range gmResp.Results {
		places = append(places, r.toPlace())
	}

	g.store(key, clonePlaces(places))

	return places, nil
}

// Search forward geocodes a free-text query, used when a photo has no
// coordinates and the editor types a place instead.
func (g *GoogleMapsClient) Search(ctx context.Context, query string) ([]GeocodeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "empty search query"}
	}

	params := url.Values{}
	params.Set("address", query)

	var gmResp googleGeocodeResponse
	if err := g.get(ctx, "/maps/api/geocode/json", params, &gmResp); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", query, err)
	}

	if gErr := ClassifyStatus(gmResp.Status, gmResp.ErrorMessage); gErr != nil {
		return nil, fmt.Errorf("geocoding %q: %w", query, gErr)
	}

	results := gmResp.toResults()

	return results, nil
}

// DecodeGeocodeResponse parses a Geocoding API JSON document, as saved from a
// previous lookup.
func DecodeGeocodeResponse(r io.Reader) ([]GeocodeResult, error) {
	var gmResp googleGeocodeResponse
	if err := json.NewDecoder(r).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}

	if gmResp.Status != "" && gmResp.Status != "ZERO_RESULTS" {
		if gErr := ClassifyStatus(gmResp.Status, gmResp.ErrorMessage); gErr != nil {
			return nil, gErr
		}
	}

	return gmResp.toResults(), nil
}
