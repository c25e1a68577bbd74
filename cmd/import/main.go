// Command import parses a single fitness file from disk, prints the
// normalized activity summary, and optionally renders the route map to
// a PNG. It exercises the same normalizer and renderer as the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/llun/fitfeed/internal/fitness"
	"github.com/llun/fitfeed/internal/logger"
	"github.com/llun/fitfeed/internal/mapimage"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "warn",
		Format:      "text",
		ServiceName: "fitfeed-import",
	})
	logger.SetDefaultLogger(appLogger)

	mapOut := flag.String("map", "", "Write the rendered route map PNG to this path")
	mapWidth := flag.Int("width", mapimage.DefaultWidth, "Map image width")
	mapHeight := flag.Int("height", mapimage.DefaultHeight, "Map image height")
	tileURL := flag.String("tiles", "", "Raster tile URL template (z/x/y)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <activity-file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	fileType, ok := fitness.FileTypeFromName(path)
	if !ok {
		appLogger.WithField("file", path).Fatal("Unrecognized file extension")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read file")
	}

	ctx := appLogger.WithContext(context.Background())
	parser := fitness.NewParser(fitness.NewFitDecoder())
	activity, err := parser.Parse(ctx, fileType, data)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to parse activity")
	}

	fmt.Printf("file:       %s (%s)\n", path, fileType)
	if activity.ActivityType != nil {
		fmt.Printf("type:       %s\n", *activity.ActivityType)
	}
	if activity.StartTime != nil {
		fmt.Printf("start:      %s\n", activity.StartTime.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Printf("distance:   %.1f m\n", activity.TotalDistanceMeters)
	fmt.Printf("duration:   %.0f s\n", activity.TotalDurationSeconds)
	if activity.ElevationGainMeters != nil {
		fmt.Printf("elevation:  +%.1f m\n", *activity.ElevationGainMeters)
	}
	fmt.Printf("points:     %d\n", len(activity.Coordinates))

	if *mapOut == "" {
		return
	}
	if !activity.HasRoute() {
		appLogger.Fatal("Activity has no drawable route")
	}

	renderer := mapimage.NewRenderer(mapimage.Config{
		TileURL: *tileURL,
		Width:   *mapWidth,
		Height:  *mapHeight,
	})
	coords := fitness.Downsample(activity.Coordinates, fitness.DefaultMaxRoutePoints)
	img, err := renderer.Render(ctx, coords)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to render map")
	}
	if img == nil {
		appLogger.Fatal("Route could not be rendered")
	}
	if err := os.WriteFile(*mapOut, img, 0o644); err != nil {
		appLogger.WithError(err).Fatal("Failed to write map image")
	}
	fmt.Printf("map:        %s (%d bytes)\n", *mapOut, len(img))
}
