// cmd/tools/schedule-cli/distance.go
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/geo"
	"renovation-workers/internal/scheduling/scoring"
)

func newDistanceCmd() *cobra.Command {
	var radius float64

	cmd := &cobra.Command{
		Use:     "distance LAT1 LNG1 LAT2 LNG2",
		Short:   "Great-circle distance in miles between two points",
		Example: "  schedule-cli distance 39.7392 -104.9903 39.8561 -104.6737 --radius 25",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords := make([]float64, len(args))
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("argument %d %q is not a number", i+1, arg)
				}
				coords[i] = v
			}

			miles, err := geo.DistanceBetween(
				models.Coordinate{Lat: coords[0], Lng: coords[1]},
				models.Coordinate{Lat: coords[2], Lng: coords[3]},
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%.2f miles\n", miles)
			if radius > 0 {
				score, within := scoring.DistanceScore(miles, radius)
				fmt.Fprintf(out, "within %.0f mi radius: %t (distance score %.1f)\n", radius, within, score)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "Also report the distance score against this service radius")
	return cmd
}
