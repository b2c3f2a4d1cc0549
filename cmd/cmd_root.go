// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/wildframe/folio/config"
	"github.com/wildframe/folio/curation"
	"github.com/wildframe/folio/geocoding"
	"github.com/wildframe/folio/photos"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "photography portfolio back-office",
	Long: `
folio keeps the photo snapshot of the portfolio site, names the places where
the photos were taken and serves the statistics and contact form of the public
pages.
`,
	SilenceUsage: true,
}

var (
	Version    = "dev"
	configFile string
)

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads folio.yaml, the environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configFile, cmd.Flags())
}

// stores bundles the duckdb handle with the repositories living in it.
type stores struct {
	db     *sql.DB
	photos *photos.Store
	names  curation.LocationNameRepository
}

func (s *stores) Close() error {
	return s.db.Close()
}

func openStores(cfg *config.Config) (*stores, error) {
	if dir := filepath.Dir(cfg.DB.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &stores{
		db:     db,
		photos: photos.NewStore(db),
		names:  curation.NewLocationNameRepository(db),
	}

	if err := s.photos.CreateSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating photos schema: %w", err)
	}

	if err := s.names.CreateSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating location names schema: %w", err)
	}

	return s, nil
}

// newGoogleClient returns nil when no Maps key can be found. Callers then
// fall back to coordinate names.
func newGoogleClient(ctx context.Context, cfg *config.Config) *geocoding.GoogleMapsClient {
	key, err := geocoding.APIKey(ctx, cfg.Google.APIKey, cfg.Google.ProjectID)
	if err != nil {
		log.Printf("⚠️  Google Maps is unavailable, names fall back to coordinates: %v", err)

		return nil
	}

	opts := &geocoding.GoogleMapsOptions{
		CacheTTL: cfg.Google.CacheTTL,
		Language: "en",
	}
	if cfg.Google.TraceHTTP {
		opts.Trace = os.Stderr
	}

	return geocoding.NewGoogleMapsClient(key, opts)
}

func newResolver(client *geocoding.GoogleMapsClient) *geocoding.Resolver {
	if client == nil {
		return geocoding.NewResolver(nil, nil)
	}

	return geocoding.NewResolver(client, client)
}

func logGoogleMetrics(client *geocoding.GoogleMapsClient) {
	if client == nil {
		return
	}

	log.Printf("Google Maps: %d API calls, %d cache hits, %d errors",
		client.Metrics.APICalls.Load(),
		client.Metrics.CacheHits.Load(),
		client.Metrics.Errors.Load())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./folio.yaml or $HOME/.folio/folio.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path of the duckdb database (default folio.db)")
	rootCmd.PersistentFlags().String("google-api-key", "", "Google Maps API key (default $GOOGLE_MAPS_API_KEY, then ADC)")
	rootCmd.PersistentFlags().String("google-project", "", "Google Cloud project holding the Maps key, used with ADC")
	rootCmd.PersistentFlags().String("content-token", "", "CMS API token for private datasets")
	rootCmd.PersistentFlags().Bool("trace-http", false, "Dump outgoing HTTP exchanges to stderr, secrets redacted")
}
