// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wildframe/folio/config"
	"github.com/wildframe/folio/photos"
	"github.com/wildframe/folio/utils/textutils"
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Sync and summarize the photo collection",
}

func newContentClient(cfg *config.Config) (*photos.ContentClient, error) {
	opts := photos.ContentOptions{
		ProjectID:  cfg.Content.ProjectID,
		Dataset:    cfg.Content.Dataset,
		APIVersion: cfg.Content.APIVersion,
		Token:      cfg.Content.Token,
		BaseURL:    cfg.Content.BaseURL,
		Timeout:    cfg.Content.Timeout,
	}
	if cfg.Google.TraceHTTP {
		opts.Trace = os.Stderr
	}

	return photos.NewContentClient(opts)
}

var photosSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the local snapshot with the photos published in the CMS",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := newContentClient(cfg)
		if err != nil {
			return err
		}

		s, err := openStores(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		start := time.Now()

		records, err := client.ListPhotos(cmd.Context(), "")
		if err != nil {
			return fmt.Errorf("fetching photos: %w", err)
		}

		if err := s.photos.Replace(cmd.Context(), records); err != nil {
			return fmt.Errorf("storing photos: %w", err)
		}

		located := 0
		for _, r := range records {
			if _, ok := r.Point(); ok {
				located++
			}
		}

		log.Printf("✅ Synced %s photos (%s with coordinates) in %s",
			textutils.FormatInt(int64(len(records))),
			textutils.FormatInt(int64(located)),
			time.Since(start).Round(time.Millisecond))

		return nil
	},
}

var photosStatsRemote bool

var photosStatsCmd = &cobra.Command{
	Use:   "stats [all|landscape|wildlife]",
	Short: "Print the statistics shown on the portfolio pages",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}

		category, ok := photos.ParseCategory(arg)
		if !ok {
			return fmt.Errorf("unknown category %q", arg)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var source photos.Source

		if photosStatsRemote {
			client, err := newContentClient(cfg)
			if err != nil {
				return err
			}

			source = client
		} else {
			s, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if last, err := s.photos.LastSync(); err == nil && !last.IsZero() {
				log.Printf("Snapshot synced %s ago", time.Since(last).Round(time.Minute))
			}

			source = photos.OverlaySource{Source: s.photos, Overrides: s.names}
		}

		records, err := source.ListPhotos(cmd.Context(), category)
		if err != nil {
			return err
		}

		stats := photos.Aggregate(records, time.Now())

		fmt.Printf("Photos\t%s\n", textutils.FormatInt(int64(stats.Total)))
		fmt.Printf("Landscape\t%s\n", textutils.FormatInt(int64(stats.Landscape)))
		fmt.Printf("Wildlife\t%s\n", textutils.FormatInt(int64(stats.Wildlife)))
		fmt.Printf("Locations\t%s\n", textutils.FormatInt(int64(stats.Locations)))
		fmt.Printf("Countries\t%s\n", textutils.FormatInt(int64(stats.Countries)))
		fmt.Printf("Species\t%s\n", textutils.FormatInt(int64(stats.Species)))
		fmt.Printf("Years active\t%s\n", stats.YearsLabel())

		return nil
	},
}

var photosClustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "List the places counted as distinct locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s, err := openStores(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.photos.Located(cmd.Context())
		if err != nil {
			return err
		}

		for _, c := range photos.Clusters(records) {
			fmt.Printf("%s\t%.5f,%.5f\t%d\t%s\n", c.Key, c.Center.Lat, c.Center.Lng, len(c.PhotoIDs), strings.Join(c.PhotoIDs, ","))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(photosCmd)
	photosCmd.AddCommand(photosSyncCmd)
	photosCmd.AddCommand(photosStatsCmd)
	photosCmd.AddCommand(photosClustersCmd)
	photosStatsCmd.Flags().BoolVar(&photosStatsRemote, "remote", false, "Query the CMS instead of the local snapshot")
}
