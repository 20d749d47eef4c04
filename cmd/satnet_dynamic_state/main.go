// Package main is the dynamic-state driver CLI: it reads a constellation's
// static inputs, computes forwarding state across a simulation window, and
// writes delta files under state_dir/dynamic_state_<ms>ms_for_<s>s, the
// directory layout the analysis tools consume.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"github.com/asgard/satnet/internal/platform/config"
	"github.com/asgard/satnet/internal/platform/dynamicstate"
	"github.com/asgard/satnet/internal/platform/fstate"
	"github.com/asgard/satnet/internal/platform/ioformat"
	"github.com/asgard/satnet/internal/platform/observability"
)

func main() {
	log.SetFlags(0)

	args := os.Args[1:]
	if len(args) != 5 && len(args) != 6 {
		log.Fatalf("usage: satnet_dynamic_state <data_dir> <state_dir> <step_ms> <duration_s> <algorithm> [shards]")
	}

	dataDir := args[0]
	stateDir := args[1]
	stepMs, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		log.Fatalf("invalid step_ms %q: %v", args[2], err)
	}
	durationS, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		log.Fatalf("invalid duration_s %q: %v", args[3], err)
	}
	algorithm := fstate.Algorithm(args[4])

	shards := 1
	if len(args) == 6 {
		shards, err = strconv.Atoi(args[5])
		if err != nil {
			log.Fatalf("invalid shards %q: %v", args[5], err)
		}
	}

	runID := uuid.New().String()
	log.Printf("run %s: dynamic-state driver starting, data_dir=%s state_dir=%s step_ms=%d duration_s=%d algorithm=%s shards=%d",
		runID, dataDir, stateDir, stepMs, durationS, algorithm, shards)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("run %s: failed to load config: %v", runID, err)
	}
	if cfg.ShardCount > shards {
		shards = cfg.ShardCount
	}
	if cfg.MetricsAddr != "" {
		go func() {
			log.Printf("run %s: serving metrics on %s/metrics", runID, cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, observability.Handler()); err != nil {
				log.Printf("run %s: metrics server stopped: %v", runID, err)
			}
		}()
	}

	parsed, err := ioformat.ReadTLEs(filepath.Join(dataDir, "tles.txt"))
	if err != nil {
		log.Fatalf("run %s: failed to read tles.txt: %v", runID, err)
	}
	sats, err := ioformat.ToTopologySatellites(parsed)
	if err != nil {
		log.Fatalf("run %s: failed to build satellite propagators: %v", runID, err)
	}
	groundRecords, err := ioformat.ReadGroundStations(filepath.Join(dataDir, "ground_stations.txt"))
	if err != nil {
		log.Fatalf("run %s: failed to read ground_stations.txt: %v", runID, err)
	}
	grounds := ioformat.ToTopologyGroundStations(groundRecords)
	isls, err := ioformat.ReadISLs(filepath.Join(dataDir, "isls.txt"), len(sats))
	if err != nil {
		log.Fatalf("run %s: failed to read isls.txt: %v", runID, err)
	}
	ifaceInfo, err := ioformat.ReadGSLInterfacesInfo(filepath.Join(dataDir, "gsl_interfaces_info.txt"), len(sats), len(grounds))
	if err != nil {
		log.Fatalf("run %s: failed to read gsl_interfaces_info.txt: %v", runID, err)
	}
	maxIslLengthM, maxGslLengthM, err := ioformat.ReadDescription(filepath.Join(dataDir, "description.txt"))
	if err != nil {
		log.Fatalf("run %s: failed to read description.txt: %v", runID, err)
	}
	if cfg.MaxIslLengthM > 0 {
		maxIslLengthM = cfg.MaxIslLengthM
	}
	if cfg.MaxGslLengthM > 0 {
		maxGslLengthM = cfg.MaxGslLengthM
	}

	epoch := sats[0].Propagator.TLE().Epoch.Time()
	outDir := filepath.Join(stateDir, fmt.Sprintf("dynamic_state_%dms_for_%ds", stepMs, durationS))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = dynamicstate.Run(ctx, dynamicstate.RunParams{
		OutputDir:       outDir,
		Epoch:           epoch,
		SimulationEndNs: durationS * 1_000_000_000,
		TimeStepNs:      stepMs * 1_000_000,
		Satellites:      sats,
		GroundStations:  grounds,
		ISLs:            isls,
		IfaceInfo:       ifaceInfo,
		MaxGslLengthM:   maxGslLengthM,
		MaxIslLengthM:   maxIslLengthM,
		Algorithm:       algorithm,
		ShardCount:      shards,
	})
	if err != nil {
		log.Fatalf("run %s: dynamic-state driver failed: %v", runID, err)
	}

	log.Printf("run %s: dynamic-state driver finished, output in %s", runID, outDir)
}
