// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/wildframe/folio/curation"
	"github.com/wildframe/folio/utils/textutils"
)

var (
	curationAddr      string
	curationNamesFile string
)

var curationCmd = &cobra.Command{
	Use:   "curation",
	Short: "Manage the interactive location naming workflow",
}

var curationServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the location naming web server (local only)",
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

		count, err := s.photos.Count()
		if err != nil {
			return fmt.Errorf("counting photos: %w", err)
		}

		if count == 0 {
			log.Println("⚠️  The photo snapshot is empty, run 'photos sync' first")
		}

		client := newGoogleClient(cmd.Context(), cfg)

		var searcher curation.PlaceSearcher
		if client != nil {
			searcher = client
		}

		server := curation.NewServer(s.names, s.photos, newResolver(client), searcher)

		addr := cfg.Curation.Addr
		if cmd.Flags().Changed("addr") {
			addr = curationAddr
		}

		fmt.Println("🗺️  Location naming server starting...")
		fmt.Printf("📍 Listening on http://%s\n", addr)
		fmt.Println("🔒 Local only - not exposed to internet")

		return server.Run(addr)
	},
}

var curationStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Export confirmed location names to a file",
	Long:  `Exports every confirmed location name from the database to a local JSON file. The file is sorted by photo id to minimize diffs when checking into version control.`,
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

		n, err := curation.Export(s.names, curationNamesFile)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Exported %s location names to %s\n", textutils.FormatInt(int64(n)), curationNamesFile)

		return nil
	},
}

var curationLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import confirmed location names from a file",
	Long: `Replaces the location names in the database with the ones in the local JSON
file when the file has more of them. Local names that were never exported are
never overwritten.`,
	Args: cobra.NoArgs,
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

		if _, err := curation.Import(s.names, curationNamesFile); err != nil {
			return err
		}

		pending, err := curation.Pending(cmd.Context(), s.photos, s.names)
		if err != nil {
			return err
		}

		log.Printf("%s located photos still need a name", textutils.FormatInt(int64(len(pending))))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(curationCmd)
	curationCmd.AddCommand(curationServeCmd)
	curationCmd.AddCommand(curationStoreCmd)
	curationCmd.AddCommand(curationLoadCmd)
	curationCmd.PersistentFlags().StringVar(&curationNamesFile, "file", curation.NamesFile, "Location names file")
	curationServeCmd.Flags().StringVar(&curationAddr, "addr", curation.DefaultAddr, "Listen address")
}
