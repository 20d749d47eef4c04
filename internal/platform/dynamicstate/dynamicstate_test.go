package dynamicstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/asgard/satnet/internal/platform/fstate"
	"github.com/asgard/satnet/internal/platform/geometry"
	"github.com/asgard/satnet/internal/platform/satellite"
	"github.com/asgard/satnet/internal/platform/topology"
)

func TestPartitionShardsCoversWholeRangeNoOverlap(t *testing.T) {
	shards := partitionShards(0, 3000, 1000, 2)
	if len(shards) != 2 {
		t.Fatalf("got %d shards, want 2", len(shards))
	}
	if shards[0].startNs != 0 || shards[1].endNs != 3000 {
		t.Fatalf("shards = %+v, want to span [0,3000)", shards)
	}
	if shards[0].endNs != shards[1].startNs {
		t.Fatalf("shards must be contiguous: %+v", shards)
	}
	totalSteps := int64(0)
	for _, sh := range shards {
		totalSteps += (sh.endNs - sh.startNs) / 1000
	}
	if totalSteps != 3 {
		t.Errorf("total steps across shards = %d, want 3", totalSteps)
	}
}

func TestPartitionShardsClampsToStepCount(t *testing.T) {
	shards := partitionShards(0, 1000, 1000, 8) // only 1 step available
	if len(shards) != 1 {
		t.Fatalf("got %d shards, want 1 (shard count clamped to step count)", len(shards))
	}
}

func TestPartitionShardsEmptyRange(t *testing.T) {
	if shards := partitionShards(0, 0, 1000, 4); shards != nil {
		t.Errorf("expected nil shards for an empty range, got %v", shards)
	}
}

func buildFixture(t *testing.T) ([]topology.Satellite, []topology.GroundStation) {
	t.Helper()
	tles, err := satellite.GenerateTLEs(satellite.ConstellationSpec{
		NumOrbits: 1, SatsPerOrbit: 2, InclinationDeg: 53.0, MeanMotionRevPerDay: 15.19,
	})
	if err != nil {
		t.Fatalf("unexpected error generating fixture TLEs: %v", err)
	}
	sats := make([]topology.Satellite, len(tles))
	for i, tle := range tles {
		prop, err := satellite.NewPropagator(tle)
		if err != nil {
			t.Fatalf("unexpected error building propagator: %v", err)
		}
		sats[i] = topology.Satellite{ID: topology.SatId(i), Name: tle.Name, Propagator: prop}
	}
	grounds := []topology.GroundStation{
		{ID: 0, Name: "gs0", LatDeg: 40, LonDeg: -74, ElevM: 0, ECEF: geometry.GeodeticToECEF(40, -74, 0)},
	}
	return sats, grounds
}

func TestRunWritesFstateFilesPerStep(t *testing.T) {
	sats, grounds := buildFixture(t)
	epoch := sats[0].Propagator.TLE().Epoch.Time()
	outDir := t.TempDir()

	ifaceInfo := []topology.IfaceInfo{
		{InterfaceCount: 1, AggregateMaxBandwidth: 1.0},
		{InterfaceCount: 1, AggregateMaxBandwidth: 1.0},
		{InterfaceCount: 1, AggregateMaxBandwidth: 1.0},
	}

	err := Run(context.Background(), RunParams{
		OutputDir:       outDir,
		Epoch:           epoch,
		SimulationEndNs: 2000,
		TimeStepNs:      1000,
		Satellites:      sats,
		GroundStations:  grounds,
		IfaceInfo:       ifaceInfo,
		MaxGslLengthM:   1e9,
		MaxIslLengthM:   1e9,
		Algorithm:       fstate.FreeOneOnlyGsRelays,
		ShardCount:      1,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, name := range []string{"fstate_0.txt", "fstate_1000.txt", "gsl_if_bandwidth_0.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}

func TestRunRejectsMisalignedOffset(t *testing.T) {
	sats, grounds := buildFixture(t)
	epoch := sats[0].Propagator.TLE().Epoch.Time()

	err := Run(context.Background(), RunParams{
		OutputDir:       t.TempDir(),
		Epoch:           epoch,
		SimulationEndNs: 2000,
		TimeStepNs:      1000,
		OffsetNs:        500,
		Satellites:      sats,
		GroundStations:  grounds,
		IfaceInfo:       make([]topology.IfaceInfo, 3),
		Algorithm:       fstate.FreeOneOnlyGsRelays,
		ShardCount:      1,
	})
	if err == nil {
		t.Fatal("expected error for an offset not aligned to the time step")
	}
}

func TestRunRejectsUnknownAlgorithm(t *testing.T) {
	sats, grounds := buildFixture(t)
	epoch := sats[0].Propagator.TLE().Epoch.Time()

	err := Run(context.Background(), RunParams{
		OutputDir:       t.TempDir(),
		Epoch:           epoch,
		SimulationEndNs: 1000,
		TimeStepNs:      1000,
		Satellites:      sats,
		GroundStations:  grounds,
		IfaceInfo:       make([]topology.IfaceInfo, 3),
		MaxGslLengthM:   1e9,
		MaxIslLengthM:   1e9,
		Algorithm:       fstate.Algorithm("bogus"),
		ShardCount:      1,
	})
	if err == nil {
		t.Fatal("expected error for an unknown algorithm")
	}
}
