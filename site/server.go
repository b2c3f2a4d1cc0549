// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

// Package site serves the public API used by the portfolio pages: collection
// statistics and the contact form.
package site

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/wildframe/folio/contact"
	"github.com/wildframe/folio/photos"
)

const (
	DefaultAddr = ":8081"
	// StatsTTL is how long computed statistics are served before the source
	// is queried again.
	StatsTTL = 5 * time.Minute
)

// Relayer delivers contact messages.
type Relayer interface {
	Send(ctx context.Context, msg contact.Message) error
}

type Server struct {
	source photos.Source
	relay  Relayer
	stats  *cache.Cache
	now    func() time.Time
}

// NewServer creates the public server. relay may be nil, in which case the
// contact form answers 503.
func NewServer(source photos.Source, relay Relayer, ttl time.Duration) *Server {
	if ttl == 0 {
		ttl = StatsTTL
	}

	return &Server{
		source: source,
		relay:  relay,
		stats:  cache.New(ttl, 2*ttl),
		now:    time.Now,
	}
}

func (s *Server) register(r gin.IRoutes) {
	r.GET("/healthz", s.healthz)
	r.GET("/api/stats/:category", s.getStats)
	r.POST("/api/contact", s.postContact)
}

// Handler returns the router serving the public API.
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

func (s *Server) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Stats returns the statistics for category, from cache when fresh.
func (s *Server) Stats(ctx context.Context, category photos.Category) (photos.Stats, error) {
	key := string(category)
	if key == "" {
		key = "all"
	}

	if v, ok := s.stats.Get(key); ok {
		return v.(photos.Stats), nil
	}

	records, err := s.source.ListPhotos(ctx, category)
	if err != nil {
		return photos.Stats{}, err
	}

	stats := photos.Aggregate(records, s.now())
	s.stats.SetDefault(key, stats)

	return stats, nil
}

func (s *Server) getStats(ctx *gin.Context) {
	category, ok := photos.ParseCategory(ctx.Param("category"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})

		return
	}

	stats, err := s.Stats(ctx.Request.Context(), category)
	if err != nil {
		log.Printf("⚠️  Computing %s stats: %v", ctx.Param("category"), err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "statistics are unavailable"})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"years_active": stats.YearsLabel(),
	})
}

func (s *Server) postContact(ctx *gin.Context) {
	if s.relay == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "contact form is disabled"})

		return
	}

	var msg contact.Message
	if err := ctx.ShouldBindJSON(&msg); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := s.relay.Send(ctx.Request.Context(), msg); err != nil {
		if errors.Is(err, contact.ErrNotConfigured) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "contact form is disabled"})

			return
		}

		log.Printf("⚠️  Relaying contact message: %v", err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "message could not be delivered"})

		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"success": true})
}
