// Package main is the analyze_path CLI: it replays a dynamic-state run's
// forwarding-state deltas and writes path-change ECDF and top-10 reports.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/asgard/satnet/internal/platform/analysis"
	"github.com/asgard/satnet/internal/platform/ioformat"
)

func main() {
	log.SetFlags(0)

	args := os.Args[1:]
	if len(args) != 4 {
		log.Fatalf("usage: analyze_path <data_dir> <state_dir> <step_ms> <duration_s>")
	}

	dataDir := args[0]
	stateRoot := args[1]
	stepMs, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		log.Fatalf("invalid step_ms %q: %v", args[2], err)
	}
	durationS, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		log.Fatalf("invalid duration_s %q: %v", args[3], err)
	}

	parsed, err := ioformat.ReadTLEs(filepath.Join(dataDir, "tles.txt"))
	if err != nil {
		log.Fatalf("failed to read tles.txt: %v", err)
	}
	sats, err := ioformat.ToTopologySatellites(parsed)
	if err != nil {
		log.Fatalf("failed to build satellite propagators: %v", err)
	}
	groundRecords, err := ioformat.ReadGroundStations(filepath.Join(dataDir, "ground_stations.txt"))
	if err != nil {
		log.Fatalf("failed to read ground_stations.txt: %v", err)
	}
	grounds := ioformat.ToTopologyGroundStations(groundRecords)

	stateDir := filepath.Join(stateRoot, fmt.Sprintf("dynamic_state_%dms_for_%ds", stepMs, durationS))
	outDir := filepath.Join(stateDir, "analysis_path")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("failed to create %s: %v", outDir, err)
	}

	log.Printf("analyze_path: replaying %s, step_ms=%d duration_s=%d", stateDir, stepMs, durationS)
	err = analysis.AnalyzePath(analysis.PathParams{
		Satellites:     sats,
		GroundStations: grounds,
		StateDir:       stateDir,
		OutDir:         outDir,
		StepNs:         stepMs * 1_000_000,
		EndNs:          durationS * 1_000_000_000,
	})
	if err != nil {
		log.Fatalf("analyze_path failed: %v", err)
	}

	log.Printf("analyze_path: reports written to %s", outDir)
}
