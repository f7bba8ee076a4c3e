// cmd/tools/schedule-cli/rank.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
	"renovation-workers/internal/scheduling/ranking"
	"renovation-workers/internal/scheduling/scoring"
)

type rankOptions struct {
	fixturePath   string
	date          string
	block         string
	timeZone      string
	lat, lng      float64
	geocoded      bool
	trades        []string
	minRating     float64
	maxDistance   float64
	onlyAvailable bool
	limit         int
	output        string
	weights       scoring.Weights
	defaultRadius float64
}

func newRankCmd() *cobra.Command {
	opts := rankOptions{weights: scoring.DefaultWeights()}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank contractors for a job from a fixture file",
		Long:  "Loads contractors and availability from a YAML or JSON fixture, scores every eligible contractor for the job and prints them best first.",
		Example: `  schedule-cli rank -f roster.yaml --date 2026-05-11 --block am --lat 39.7392 --lng -104.9903
  schedule-cli rank -f roster.json --date 2026-05-11 --block pm --trade plumbing --only-available -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.geocoded = cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng")
			if cmd.Flags().Changed("lat") != cmd.Flags().Changed("lng") {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			if !cmd.Flags().Changed("min-rating") {
				opts.minRating = -1
			} else if opts.minRating < 0 {
				return fmt.Errorf("--min-rating must not be negative, got %g", opts.minRating)
			}
			if !cmd.Flags().Changed("max-distance") {
				opts.maxDistance = -1
			} else if opts.maxDistance < 0 {
				return fmt.Errorf("--max-distance must not be negative, got %g", opts.maxDistance)
			}
			return runRank(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.fixturePath, "fixtures", "f", "", "Path to a YAML or JSON fixture (required)")
	f.StringVar(&opts.date, "date", "", "Job date as YYYY-MM-DD (required)")
	f.StringVar(&opts.block, "block", string(models.TimeBlockAM), "Time block: am, pm or evening")
	f.StringVar(&opts.timeZone, "time-zone", "UTC", "Business time zone used for date keys")
	f.Float64Var(&opts.lat, "lat", 0, "Job site latitude")
	f.Float64Var(&opts.lng, "lng", 0, "Job site longitude")
	f.StringSliceVar(&opts.trades, "trade", nil, "Required trade (repeatable)")
	f.Float64Var(&opts.minRating, "min-rating", 0, "Minimum overall rating")
	f.Float64Var(&opts.maxDistance, "max-distance", 0, "Maximum distance in miles")
	f.BoolVar(&opts.onlyAvailable, "only-available", false, "Drop contractors whose block is not available")
	f.IntVarP(&opts.limit, "limit", "n", 0, "Show at most n contractors (0 shows all)")
	f.StringVarP(&opts.output, "output", "o", "table", "Output format: table or json")
	f.Float64Var(&opts.weights.Availability, "weight-availability", opts.weights.Availability, "Availability weight")
	f.Float64Var(&opts.weights.Distance, "weight-distance", opts.weights.Distance, "Distance weight")
	f.Float64Var(&opts.weights.Rating, "weight-rating", opts.weights.Rating, "Rating weight")
	f.Float64Var(&opts.defaultRadius, "default-radius", models.DefaultServiceRadiusMiles, "Service radius in miles for contractors without one")
	_ = cmd.MarkFlagRequired("fixtures")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

type rankResult struct {
	DateKey          string                            `json:"dateKey"`
	TimeBlock        models.TimeBlock                  `json:"timeBlock"`
	Candidates       int                               `json:"candidates"`
	Eligible         int                               `json:"eligible"`
	DegradedDistance int                               `json:"degradedDistance"`
	Recommendations  []models.ContractorRecommendation `json:"recommendations"`
}

func runRank(out io.Writer, opts rankOptions) error {
	loc, err := time.LoadLocation(opts.timeZone)
	if err != nil {
		return fmt.Errorf("time zone %q: %w", opts.timeZone, err)
	}

	fixture, err := loadFixture(opts.fixturePath)
	if err != nil {
		return err
	}

	req, filters, err := buildRankRequest(opts, loc)
	if err != nil {
		return err
	}

	engine, err := scoring.NewEngine(
		availability.NewResolver(availability.NewSnapshot(fixture.Availability...), availability.WithLocation(loc)),
		scoring.WithWeights(opts.weights),
		scoring.WithDefaultServiceRadius(opts.defaultRadius),
	)
	if err != nil {
		return err
	}

	recs, stats, err := ranking.NewRanker(engine).RankWithStats(fixture.Contractors, req, filters)
	if err != nil {
		return err
	}

	result := rankResult{
		DateKey:          availability.FormatDateKeyIn(req.JobDate, loc),
		TimeBlock:        req.TimeBlock,
		Candidates:       stats.Candidates,
		Eligible:         stats.Eligible,
		DegradedDistance: stats.DegradedDistance,
		Recommendations:  ranking.Limit(recs, opts.limit),
	}

	switch strings.ToLower(opts.output) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "table":
		renderRankTable(out, result)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
}

func buildRankRequest(opts rankOptions, loc *time.Location) (models.SchedulingRequest, *models.RecommendationFilters, error) {
	jobDate, err := availability.ParseDateKeyIn(opts.date, loc)
	if err != nil {
		return models.SchedulingRequest{}, nil, err
	}
	block, err := models.ParseTimeBlock(opts.block)
	if err != nil {
		return models.SchedulingRequest{}, nil, err
	}

	site := models.Address{}
	if opts.geocoded {
		site = site.WithCoordinates(opts.lat, opts.lng)
	}

	trades := make([]models.Trade, 0, len(opts.trades))
	for _, raw := range opts.trades {
		trade, err := models.ParseTrade(raw)
		if err != nil {
			return models.SchedulingRequest{}, nil, err
		}
		trades = append(trades, trade)
	}

	req := models.SchedulingRequest{
		JobDate:        jobDate,
		TimeBlock:      block,
		JobLocation:    &site,
		RequiredTrades: trades,
	}
	if err := req.Validate(); err != nil {
		return models.SchedulingRequest{}, nil, err
	}

	filters := &models.RecommendationFilters{OnlyAvailable: opts.onlyAvailable}
	if opts.minRating >= 0 {
		filters.MinRating = &opts.minRating
	}
	if opts.maxDistance >= 0 {
		filters.MaxDistance = &opts.maxDistance
	}
	return req, filters, nil
}

func renderRankTable(out io.Writer, result rankResult) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Contractors for %s (%s)", result.DateKey, result.TimeBlock))
	t.AppendHeader(table.Row{"#", "Contractor", "Business", "Score", "Distance", "Rating", "Tier", "Availability", "In Radius"})

	for i, rec := range result.Recommendations {
		distance := "n/a"
		if rec.DistanceKnown {
			distance = fmt.Sprintf("%.1f mi", rec.Distance)
		}
		inRadius := "no"
		if rec.IsWithinServiceRadius {
			inRadius = "yes"
		}
		t.AppendRow(table.Row{
			i + 1,
			rec.ContractorID,
			rec.Contractor.BusinessName,
			rec.Score,
			distance,
			fmt.Sprintf("%.1f", rec.Rating),
			rec.Tier,
			rec.AvailabilityStatus,
			inRadius,
		})
	}

	t.AppendFooter(table.Row{"", "", "candidates", result.Candidates, "eligible", result.Eligible, "", "no distance", result.DegradedDistance})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}
