// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/wildframe/folio/contact"
	"github.com/wildframe/folio/photos"
	"github.com/wildframe/folio/site"
)

var siteAddr string

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Public API of the portfolio pages",
}

var siteServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve statistics and the contact form",
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

		var relay site.Relayer

		r, err := contact.NewRelay(cfg.Contact.URLs, cfg.Contact.Timeout)
		switch {
		case errors.Is(err, contact.ErrNotConfigured):
			log.Println("⚠️  No contact.urls configured, the contact form is disabled")
		case err != nil:
			return err
		default:
			relay = r
		}

		source := photos.OverlaySource{Source: s.photos, Overrides: s.names}
		server := site.NewServer(source, relay, 0)

		addr := cfg.Site.Addr
		if cmd.Flags().Changed("addr") {
			addr = siteAddr
		}

		fmt.Printf("🌐 Public API listening on %s\n", addr)

		return server.Run(addr)
	},
}

func init() {
	rootCmd.AddCommand(siteCmd)
	siteCmd.AddCommand(siteServeCmd)
	siteServeCmd.Flags().StringVar(&siteAddr, "addr", site.DefaultAddr, "Listen address")
}
