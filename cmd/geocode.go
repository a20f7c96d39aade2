package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dwellscan/survey-cli/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <query...>",
	Short: "Resolve a free-text address to coordinates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := geocode.NewClient(
			geocode.WithBaseURL(cfg.Geocode.BaseURL),
			geocode.WithUserAgent(cfg.Geocode.UserAgent),
			geocode.WithRateLimit(cfg.Geocode.RateLimit),
		)

		result, err := client.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !result.Matched {
			fmt.Fprintln(out, "No match.")
			return nil
		}
		fmt.Fprintf(out, "%.6f, %.6f  %s\n", result.Latitude, result.Longitude, result.DisplayName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
