package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jo-hoe/imagelabels/internal/backend/detection"
	"github.com/jo-hoe/imagelabels/internal/common"
	"github.com/jo-hoe/imagelabels/internal/core"
	"github.com/joho/godotenv"
)

func getConfigPath() string {
	// First check if config path is provided via environment variable
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// Default to config.yaml in current working directory
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cwd, "config.yaml")
}

// detect runs the configured detector once on a local image and prints the
// labels as a JSON array.
func main() {
	detectorName := flag.String("detector", "", "detector to use instead of the configured one")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-detector name] <image>\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "registered detectors: %v\n", detection.DefaultRegistry.GetRegisteredNames())
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	configPath := getConfigPath()
	config, err := core.LoadConfig(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	common.SetupLogger(os.Stderr, config.Logging.Level, config.Logging.Format)

	name := config.Detection.Name
	if *detectorName != "" {
		name = *detectorName
	}

	image, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		slog.Error("failed to read image", "path", flag.Arg(0), "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	detector, err := detection.New(ctx, name, config.Detection.Params, config.Detection.Timeout)
	if err != nil {
		slog.Error("failed to create detector", "name", name, "error", err)
		os.Exit(1)
	}

	labels, err := detector.Detect(ctx, image)
	if err != nil {
		slog.Error("detection failed", "name", name, "error", err)
		os.Exit(1)
	}

	if err := json.NewEncoder(os.Stdout).Encode(labels); err != nil {
		slog.Error("failed to write labels", "error", err)
		os.Exit(1)
	}
}
