// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wildframe/folio/curation"
	"github.com/wildframe/folio/spatial"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Name the places where photos were taken",
}

func parsePoint(latStr, lngStr string) (spatial.Point, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("invalid latitude %q", latStr)
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("invalid longitude %q", lngStr)
	}

	p := spatial.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return spatial.Point{}, fmt.Errorf("%s is out of range", p)
	}

	return p, nil
}

var locationsResolveCmd = &cobra.Command{
	Use:   "resolve <lat> <lng>",
	Short: "Resolve a coordinate pair to a place name",
	Long: `Reverse geocodes the coordinates and prints the chosen name, country, where
the name came from and the score of the winning result.

$ folio locations resolve 52.8734 -118.0814
Jasper National Park	Canada	formatted_address	900
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePoint(args[0], args[1])
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client := newGoogleClient(cmd.Context(), cfg)
		res := newResolver(client).ResolvePoint(cmd.Context(), p)

		fmt.Printf("%s\t%s\t%s\t%d\n", res.Name, res.Country, res.Source, res.Score)

		return nil
	},
}

var locationsSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest names for photos with coordinates and no confirmed name",
	Long: `Prints one suggestion per pending photo: photo id, name, country, method and
confidence. Nothing is saved: names are confirmed in the curation server.`,
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

		pending, err := curation.Pending(cmd.Context(), s.photos, s.names)
		if err != nil {
			return err
		}

		if len(pending) == 0 {
			log.Println("✅ Every located photo has a confirmed name")

			return nil
		}

		client := newGoogleClient(cmd.Context(), cfg)
		suggester := curation.NewSuggester(s.names, newResolver(client))

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(pending),
				progressbar.OptionSetDescription("Resolving"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		suggestions := make([]*curation.Suggestion, 0, len(pending))

		for i := range pending {
			sug, err := suggester.Suggest(cmd.Context(), &pending[i])
			if err != nil {
				return fmt.Errorf("suggesting %s: %w", pending[i].ID, err)
			}

			suggestions = append(suggestions, sug)

			if bar == nil {
				log.Printf("Resolved %s", pending[i].ID)
			} else if err := bar.Add(1); err != nil {
				return fmt.Errorf("updating progress bar: %w", err)
			}
		}

		for _, sug := range suggestions {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", sug.PhotoID, sug.Name, sug.Country, sug.Method, sug.Confidence)
		}

		logGoogleMetrics(client)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.AddCommand(locationsResolveCmd)
	locationsCmd.AddCommand(locationsSuggestCmd)
}
