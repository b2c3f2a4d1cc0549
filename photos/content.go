// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package photos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wildframe/folio/spatial"
	"github.com/wildframe/folio/utils/httputils"
)

// DefaultAPIVersion is the dated version of the CMS query API.
const DefaultAPIVersion = "2024-01-01"

// photosQuery projects photo documents into the shape decoded by contentPhoto.
const photosQuery = `*[_type == "photo" && ($category == "" || category == $category)] | order(_id asc) {
  "id": _id,
  title,
  category,
  "updatedAt": _updatedAt,
  "location": location {
    "lat": coordinates.lat,
    "lng": coordinates.lng,
    name,
    country
  },
  "species": species[]-> { "id": _id, name },
  "dates": {
    "manual": captureDate,
    "exifOriginal": image.asset->metadata.exif.DateTimeOriginal,
    "exifDigitized": image.asset->metadata.exif.DateTimeDigitized
  }
}`

// Source lists photo records. Category "" selects every category.
type Source interface {
	ListPhotos(ctx context.Context, category Category) ([]PhotoRecord, error)
}

// ContentOptions configures a ContentClient.
type ContentOptions struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	// Token is sent as a bearer token, needed for private datasets
	Token string
	// BaseURL overrides https://<project>.api.sanity.io
	BaseURL string
	Timeout time.Duration
	Trace   io.Writer
}

// ContentClient reads photo documents from the headless CMS query API.
type ContentClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewContentClient creates a client for the dataset in opts.
func NewContentClient(opts ContentOptions) (*ContentClient, error) {
	if opts.Dataset == "" {
		return nil, errors.New("content dataset is required")
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		if opts.ProjectID == "" {
			return nil, errors.New("content project id or base url is required")
		}

		base = fmt.Sprintf("https://%s.api.sanity.io", opts.ProjectID)
	}

	version := opts.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	headers := map[string]string{"Accept": "application/json"}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}

	return &ContentClient{
		endpoint: fmt.Sprintf("%s/v%s/data/query/%s", base, strings.TrimPrefix(version, "v"), url.PathEscape(opts.Dataset)),
		httpClient: httputils.NewClient(httputils.ClientOptions{
			Timeout: timeout,
			Headers: headers,
			Trace:   opts.Trace,
		}),
	}, nil
}

type contentLocation struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Name    string   `json:"name"`
	Country string   `json:"country"`
}

type contentPhoto struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Category  string           `json:"category"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Location  *contentLocation `json:"location"`
	Species   []*SpeciesRef    `json:"species"`
	Dates     struct {
		Manual        string `json:"manual"`
		ExifOriginal  string `json:"exifOriginal"`
		ExifDigitized string `json:"exifDigitized"`
	} `json:"dates"`
}

type contentResponse struct {
	Result []contentPhoto `json:"result"`
	Error  *struct {
		Description string `json:"description"`
	} `json:"error"`
}

func (p contentPhoto) toRecord() PhotoRecord {
	r := PhotoRecord{
		ID:        p.ID,
		Title:     strings.TrimSpace(p.Title),
		Category:  Category(strings.ToLower(strings.TrimSpace(p.Category))),
		UpdatedAt: p.UpdatedAt,
		Dates: CaptureDates{
			Manual:        p.Dates.Manual,
			ExifOriginal:  p.Dates.ExifOriginal,
			ExifDigitized: p.Dates.ExifDigitized,
		},
	}

	if l := p.Location; l != nil {
		r.Location = &Location{Name: strings.TrimSpace(l.Name), Country: strings.TrimSpace(l.Country)}
		if l.Lat != nil && l.Lng != nil {
			r.Location.Point = &spatial.Point{Lat: *l.Lat, Lng: *l.Lng}
		}
	}

	// dangling references come back as null
	for _, s := range p.Species {
		if s != nil && strings.TrimSpace(s.Name) != "" {
			r.Species = append(r.Species, SpeciesRef{ID: s.ID, Name: strings.TrimSpace(s.Name)})
		}
	}

	return r
}

// ListPhotos runs the photo query, restricted to category unless it is "".
func (c *ContentClient) ListPhotos(ctx context.Context, category Category) ([]PhotoRecord, error) {
	categoryParam, err := json.Marshal(string(category))
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", photosQuery)
	params.Set("$category", string(categoryParam))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building content query: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying photos: %w", err)
	}
	defer resp.Body.Close()

	var body contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("querying photos: HTTP %d", resp.StatusCode)
		}

		return nil, fmt.Errorf("decoding photos: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if body.Error != nil && body.Error.Description != "" {
			return nil, fmt.Errorf("querying photos: HTTP %d: %s", resp.StatusCode, body.Error.Description)
		}

		return nil, fmt.Errorf("querying photos: HTTP %d", resp.StatusCode)
	}

	records := make([]PhotoRecord, 0, len(body.Result))
	for _, p := range body.Result {
		records = append(records, p.toRecord())
	}

	return records, nil
}
