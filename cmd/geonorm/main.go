package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/dmvmap/internal/geo"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     description:"Input GeoJSON file. Reads from stdin if empty"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"geojson" choice:"json" choice:"yaml" default:"geojson"`
	BBox   string `short:"b" long:"bbox"   description:"Keep only points inside south,west,north,east"`
	Strict bool   `short:"s" long:"strict" description:"Fail on the first record that cannot be placed"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	var box *geo.BoundingBox
	if opts.BBox != "" {
		b, err := parseBBox(opts.BBox)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: --bbox: %v\n", err)
			os.Exit(1)
		}
		box = &b
	}

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	fc, err := geojson.UnmarshalFeatureCollection(inputData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing GeoJSON: %v\n", err)
		os.Exit(1)
	}

	var features []geo.NormalizedFeature
	if opts.Strict {
		features, err = geo.NormalizeCollectionAll(fc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		var failed []*geo.RecordError
		features, failed = geo.FeaturesFromCollection(fc)
		for _, e := range failed {
			fmt.Fprintf(os.Stderr, "Skipping %v\n", e)
		}
	}

	if box != nil {
		features = geo.WithinFeatures(features, *box)
	}

	// marshal
	var outputData []byte
	switch opts.Format {
	case "yaml":
		outputData, err = yaml.Marshal(features)
	case "json":
		outputData, err = json.MarshalIndent(features, "", "  ")
	default:
		outputData, err = json.MarshalIndent(geo.FeatureCollection(features), "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Normalized %d of %d features to %s (format: %s)\n",
			len(features), len(fc.Features), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}

func parseBBox(raw string) (geo.BoundingBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return geo.BoundingBox{}, fmt.Errorf("want 4 comma separated values, got %d", len(parts))
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.BoundingBox{}, err
		}
		v[i] = f
	}

	box := geo.BoundingBox{South: v[0], West: v[1], North: v[2], East: v[3]}
	return box, box.Validate()
}
