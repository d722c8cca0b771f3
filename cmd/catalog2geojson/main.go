package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb/geojson"

	"poimap/pkg/catalog"
	"poimap/pkg/model"
)

func main() {
	inputPath := flag.String("input", "", "Path to input catalog (.yaml, .json, .geojson or .shp)")
	outputPath := flag.String("output", "", "Path to output .geojson file")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		flag.Usage()
		log.Fatal("Input and output paths are required")
	}

	if err := run(*inputPath, *outputPath); err != nil {
		log.Fatal(err)
	}
}

func run(inputPath, outputPath string) error {
	src, err := catalog.LoadFile(inputPath)
	if err != nil {
		return err
	}

	cat, report, err := catalog.Build(src, catalog.Options{})
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}
	for _, r := range report.Rejected {
		fmt.Fprintf(os.Stderr, "rejected #%d %q: %s\n", r.Index, r.Name, r.Reason)
	}

	data, err := json.MarshalIndent(toFeatureCollection(cat), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Printf("Successfully converted %d points to %s (%d rejected)\n", cat.Len(), outputPath, len(report.Rejected))
	return nil
}

// toFeatureCollection writes the properties ParseGeoJSON reads back.
func toFeatureCollection(cat *catalog.Catalog) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range cat.Points() {
		f := geojson.NewFeature(p.Position())
		f.Properties["name"] = p.Name
		setIf(f, "type", p.Type)
		setIf(f, "city", p.City)
		setIf(f, "desc", p.Desc)
		setIf(f, "url", p.URL)
		if p.Glyph != model.DefaultGlyph {
			f.Properties["emoji"] = string(p.Glyph)
		}
		if rank, ok := cat.Featured().Rank(p.Name); ok {
			f.Properties["featured_rank"] = rank + 1
		}
		f.Properties["score"] = p.Score
		fc.Append(f)
	}
	return fc
}

func setIf(f *geojson.Feature, key, val string) {
	if val != "" {
		f.Properties[key] = val
	}
}
