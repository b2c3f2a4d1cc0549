// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/wildframe/folio/geocoding"
	"github.com/wildframe/folio/spatial"
)

var debugPoint spatial.Point

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a saved Geocoding API response offline",
	Long: `Reads a Geocoding API JSON response on stdin and prints the candidates with
their score followed by the resolution. No request is made, so names are not
refined with place details.

$ curl -s "https://maps.googleapis.com/maps/api/geocode/json?latlng=52.87,-118.08&key=$KEY" | folio debug resolve --lat 52.87 --lng -118.08
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Paste a Geocoding API response, end with Ctrl-D…")
		}

		results, err := geocoding.DecodeGeocodeResponse(os.Stdin)
		if err != nil {
			return err
		}

		for _, c := range geocoding.Rank(results) {
			name, source := geocoding.ExtractName(c.Result)
			fmt.Printf("%d\t%4d\t%t\t%s (%s)\t%v\n", c.Index, c.Score, geocoding.Allowed(c.Result), name, source, c.Result.Types)
		}

		res := geocoding.NewResolver(nil, nil).Resolve(cmd.Context(), debugPoint, results)

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugResolveCmd)
	debugResolveCmd.Flags().Float64Var(&debugPoint.Lat, "lat", 0, "Latitude the response was requested for")
	debugResolveCmd.Flags().Float64Var(&debugPoint.Lng, "lng", 0, "Longitude the response was requested for")
}
