package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ChicagoDave/zoneplanner/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zoneplanner",
		Short: "Irrigation zone partitioning for planted fields",
	}

	rootCmd.AddCommand(partitionCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// zoningFlags override the zoning section of field.yaml.
type zoningFlags struct {
	zones         int
	mode          string
	seed          int64
	padding       float64
	voronoi       bool
	waterStrategy string
}

func (f *zoningFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.zones, "zones", 0, "number of zones")
	cmd.Flags().StringVar(&f.mode, "mode", "", "balance mode: geographic, water or count")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed for reproducible layouts")
	cmd.Flags().Float64Var(&f.padding, "padding", 0, "hull padding in meters (non-Voronoi mode)")
	cmd.Flags().BoolVar(&f.voronoi, "voronoi", true, "tessellate with Voronoi cells instead of padded hulls")
	cmd.Flags().StringVar(&f.waterStrategy, "water-strategy", "", "water balancing: enhanced or greedy")
}

func (f *zoningFlags) options(cmd *cobra.Command) runOptions {
	var o runOptions
	flags := cmd.Flags()
	if flags.Changed("zones") {
		o.zones = &f.zones
	}
	if flags.Changed("mode") {
		o.mode = &f.mode
	}
	if flags.Changed("seed") {
		o.seed = &f.seed
	}
	if flags.Changed("padding") {
		o.padding = &f.padding
	}
	if flags.Changed("voronoi") {
		o.voronoi = &f.voronoi
	}
	if flags.Changed("water-strategy") {
		o.waterStrategy = &f.waterStrategy
	}
	return o
}

func partitionCmd() *cobra.Command {
	var (
		zf      zoningFlags
		summary bool
	)
	cmd := &cobra.Command{
		Use:   "partition [project-path]",
		Short: "Partition the field into irrigation zones and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPartition(args[0], zf.options(cmd), summary)
		},
	}
	zf.register(cmd)
	cmd.Flags().BoolVar(&summary, "summary", false, "print a zone table instead of JSON")
	return cmd
}

func validateCmd() *cobra.Command {
	var zf zoningFlags
	cmd := &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a field and the zones it produces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], zf.options(cmd))
		},
	}
	zf.register(cmd)
	return cmd
}

func renderCmd() *cobra.Command {
	var (
		zf       zoningFlags
		out      string
		width    int
		plants   bool
		simplify float64
	)
	cmd := &cobra.Command{
		Use:   "render [project-path]",
		Short: "Write the zones as SVG or GeoJSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], zf.options(cmd), renderOptions{
				out:      out,
				width:    width,
				plants:   plants,
				simplify: simplify,
			})
		},
	}
	zf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "zones.svg", "output file (.svg or .geojson)")
	cmd.Flags().IntVar(&width, "width", 800, "SVG width in pixels")
	cmd.Flags().BoolVar(&plants, "plants", true, "include plants")
	cmd.Flags().Float64Var(&simplify, "simplify", 0, "GeoJSON Douglas-Peucker tolerance in degrees")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local dev server with partition and export endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			srv := server.New(args[0], port)
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
