// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package curation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wildframe/folio/geocoding"
	"github.com/wildframe/folio/photos"
	"github.com/wildframe/folio/spatial"
)

// DefaultAddr keeps the curation server on the loopback interface.
const DefaultAddr = "localhost:8080"

// PhotoStore is the photo snapshot the editor works on.
type PhotoStore interface {
	photos.Source
	Located(ctx context.Context) ([]photos.PhotoRecord, error)
	Get(ctx context.Context, id string) (*photos.PhotoRecord, error)
}

// PlaceSearcher forward geocodes free text.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]geocoding.GeocodeResult, error)
}

type Server struct {
	names     LocationNameRepository
	photos    PhotoStore
	resolver  *geocoding.Resolver
	suggester *Suggester
	searcher  PlaceSearcher
	now       func() time.Time
}

// NewServer creates the curation server. resolver and searcher may be nil when
// no Google Maps key is available.
func NewServer(names LocationNameRepository, store PhotoStore, resolver *geocoding.Resolver, searcher PlaceSearcher) *Server {
	if resolver == nil {
		resolver = geocoding.NewResolver(nil, nil)
	}

	return &Server{
		names:     names,
		photos:    store,
		resolver:  resolver,
		suggester: NewSuggester(names, resolver),
		searcher:  searcher,
		now:       time.Now,
	}
}

func (s *Server) register(r gin.IRoutes) {
	r.GET("/api/photos/queue", s.getPhotoQueue)
	r.GET("/api/locations/suggest/:photo_id", s.suggestName)
	r.GET("/api/locations/resolve", s.resolvePoint)
	r.GET("/api/locations/search", s.searchPlaces)
	r.POST("/api/locations/accept/:photo_id", s.acceptName)
	r.GET("/api/locations/progress", s.getProgress)
	r.GET("/api/locations/names", s.listNames)
	r.GET("/api/stats/:category", s.getStats)
}

// Handler returns the router serving the curation API.
func (s *Server) Handler() *gin.Engine {
	r := gin.Default()
	s.register(r)

	return r
}

func (s *Server) Run(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	return s.Handler().Run(addr)
}

// Pending returns the located photos without a confirmed name.
func Pending(ctx context.Context, store PhotoStore, names LocationNameRepository) ([]photos.PhotoRecord, error) {
	located, err := store.Located(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing located photos: %w", err)
	}

	confirmed, err := names.Overrides()
	if err != nil {
		return nil, fmt.Errorf("listing confirmed names: %w", err)
	}

	pending := make([]photos.PhotoRecord, 0, len(located))

	for _, r := range located {
		if _, ok := confirmed[r.ID]; !ok {
			pending = append(pending, r)
		}
	}

	return pending, nil
}

// QueueItem is a photo waiting for a location name.
type QueueItem struct {
	PhotoID  string          `json:"photo_id"`
	Title    string          `json:"title"`
	Category photos.Category `json:"category"`
	Point    spatial.Point   `json:"point"`
	// Name and Country as synced from the CMS, if any
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

// PhotoCluster is a group of pending photos taken close to each other.
type PhotoCluster struct {
	Center spatial.Point `json:"center"`
	Items  []*QueueItem  `json:"items"`
}

func newCluster(items []*QueueItem) *PhotoCluster {
	c := &PhotoCluster{Items: items}
	for _, item := range items {
		c.Center.Lat += item.Point.Lat / float64(len(items))
		c.Center.Lng += item.Point.Lng / float64(len(items))
	}

	return c
}

func (s *Server) getPhotoQueue(ctx *gin.Context) {
	pending, err := Pending(ctx.Request.Context(), s.photos, s.names)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	items := make([]*QueueItem, 0, len(pending))

	for _, r := range pending {
		p, _ := r.Point()
		items = append(items, &QueueItem{
			PhotoID:  r.ID,
			Title:    r.Title,
			Category: r.Category,
			Point:    p,
			Name:     r.LocationName(),
			Country:  r.Country(),
		})
	}

	if ctx.Query("mode") != "cluster" {
		ctx.JSON(http.StatusOK, items)

		return
	}

	groups := clusterPending(items, ClusterRadius)
	log.Printf("Grouped %d pending photos into %d clusters", len(items), len(groups))

	clusters := make([]*PhotoCluster, 0, len(groups))
	for _, g := range groups {
		clusters = append(clusters, newCluster(g))
	}

	ctx.JSON(http.StatusOK, clusters)
}

func (s *Server) suggestName(ctx *gin.Context) {
	photoID := ctx.Param("photo_id")

	photo, err := s.photos.Get(ctx.Request.Context(), photoID)
	if err != nil {
		if errors.Is(err, photos.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	sug, err := s.suggester.Suggest(ctx.Request.Context(), photo)
	if err != nil {
		if errors.Is(err, ErrNoCoordinates) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no suggestion available", "details": err.Error()})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, sug)
}

func parseCoordinates(latStr, lngStr string) (spatial.Point, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("invalid lat parameter: %q", latStr)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("invalid lng parameter: %q", lngStr)
	}

	if err := validateCoordinates(lat, lng); err != nil {
		return spatial.Point{}, err
	}

	return spatial.Point{Lat: lat, Lng: lng}, nil
}

func (s *Server) resolvePoint(ctx *gin.Context) {
	p, err := parseCoordinates(ctx.Query("lat"), ctx.Query("lng"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, s.resolver.ResolvePoint(ctx.Request.Context(), p))
}

// SearchResult is a place found by free text.
type SearchResult struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Score     int     `json:"score"`
}

func (s *Server) searchPlaces(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("q"))
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	if s.searcher == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "place search is not configured"})

		return
	}

	results, err := s.searcher.Search(ctx.Request.Context(), query)
	if err != nil {
		if geocoding.IsNotFoundError(err) {
			ctx.JSON(http.StatusOK, []SearchResult{})

			return
		}

		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	candidates := geocoding.Rank(geocoding.Filter(results))
	slices.SortStableFunc(candidates, func(a, b geocoding.Candidate) int { return b.Score - a.Score })

	found := make([]SearchResult, 0, len(candidates))

	for _, c := range candidates {
		name, _ := geocoding.ExtractName(c.Result)
		found = append(found, SearchResult{
			Name:      name,
			Country:   geocoding.Country(c.Result),
			Address:   c.Result.FormattedAddress,
			Latitude:  c.Result.Point.Lat,
			Longitude: c.Result.Point.Lng,
			Score:     c.Score,
		})
	}

	ctx.JSON(http.StatusOK, found)
}

type AcceptNameRequest struct {
	Name       string   `json:"name"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Method     string   `json:"method"`
	Confidence string   `json:"confidence"`
	Notes      string   `json:"notes"`
}

func (s *Server) acceptName(ctx *gin.Context) {
	photoID := strings.TrimSpace(ctx.Param("photo_id"))

	var req AcceptNameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	name := &LocationName{
		PhotoID:    photoID,
		Name:       sanitizeName(req.Name),
		Country:    sanitizeName(req.Country),
		Method:     req.Method,
		Confidence: req.Confidence,
		Notes:      strings.TrimSpace(req.Notes),
	}

	switch {
	case req.Latitude != nil && req.Longitude != nil:
		name.Point = &spatial.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	case req.Latitude != nil || req.Longitude != nil:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude go together"})

		return
	default:
		photo, err := s.photos.Get(ctx.Request.Context(), photoID)
		if err != nil && !errors.Is(err, photos.ErrNotFound) {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

			return
		}

		if photo != nil {
			if p, ok := photo.Point(); ok {
				name.Point = &p
			}
		}
	}

	if name.Method == "" {
		name.Method = MethodManual
	}

	if err := validateLocationName(name); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("validation failed: %v", err)})

		return
	}

	if err := s.names.Save(name); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("saving: %v", err)})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

type ProgressResponse struct {
	LocatedPhotos int            `json:"located_photos"`
	NamedPhotos   int            `json:"named_photos"`
	Percentage    float64        `json:"percentage"`
	ByMethod      map[string]int `json:"by_method"`
}

func (s *Server) getProgress(ctx *gin.Context) {
	located, err := s.photos.Located(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	pending, err := Pending(ctx.Request.Context(), s.photos, s.names)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	byMethod, err := s.names.CountByMethod()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	named := len(located) - len(pending)

	pct := 0.0
	if len(located) > 0 {
		pct = (float64(named) / float64(len(located))) * 100
	}

	ctx.JSON(http.StatusOK, ProgressResponse{
		LocatedPhotos: len(located),
		NamedPhotos:   named,
		Percentage:    pct,
		ByMethod:      byMethod,
	})
}

func (s *Server) listNames(ctx *gin.Context) {
	page := 1
	perPage := 50

	if p := ctx.Query("page"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &page); err != nil || page < 1 {
			page = 1
		}
	}

	if pp := ctx.Query("per_page"); pp != "" {
		if _, err := fmt.Sscanf(pp, "%d", &perPage); err != nil || perPage < 1 {
			perPage = 50
		}
	}

	offset := (page - 1) * perPage

	names, err := s.names.List(perPage, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	total, err := s.names.Count()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if names == nil {
		names = []*LocationName{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"names":    names,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (s *Server) getStats(ctx *gin.Context) {
	category, ok := photos.ParseCategory(ctx.Param("category"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})

		return
	}

	src := photos.OverlaySource{Source: s.photos, Overrides: s.names}

	records, err := src.ListPhotos(ctx.Request.Context(), category)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, photos.Aggregate(records, s.now()))
}
