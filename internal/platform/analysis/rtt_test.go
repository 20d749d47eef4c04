package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/asgard/satnet/internal/platform/topology"
)

func TestAnalyzeRTTWritesReports(t *testing.T) {
	sats, grounds := buildFixtureConstellation(t)
	epoch := sats[0].Propagator.TLE().Epoch.Time()

	stateDir := t.TempDir()
	outDir := t.TempDir()

	// 4 -> 0 (ground-sat), 0 -> 1 (ISL), 1 -> 5 (sat-ground)
	writeDeltaFile(t, stateDir, 0, "4,5,0,0,0\n0,5,1,0,0\n1,5,5,0,0\n")
	writeDeltaFile(t, stateDir, 1000, "")

	err := AnalyzeRTT(RTTParams{
		Epoch:          epoch,
		Satellites:     sats,
		GroundStations: grounds,
		ISLs:           []topology.ISL{{A: 0, B: 1}},
		MaxIslLengthM:  1e9,
		MaxGslLengthM:  1e9,
		StateDir:       stateDir,
		OutDir:         outDir,
		StepNs:         1000,
		EndNs:          2000,
	})
	if err != nil {
		t.Fatalf("AnalyzeRTT failed: %v", err)
	}

	for _, name := range []string{
		"ecdf_pairs_min_rtt_ns.txt",
		"ecdf_pairs_max_rtt_ns.txt",
		"ecdf_pairs_max_minus_min_rtt_ns.txt",
		"ecdf_pairs_max_rtt_to_min_rtt_slowdown.txt",
		"top_10_largest_rtt_delta.txt",
		"top_10_most_unreachable.txt",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected report %s to be written: %v", name, err)
		}
	}

	minBytes, err := os.ReadFile(filepath.Join(outDir, "ecdf_pairs_min_rtt_ns.txt"))
	if err != nil {
		t.Fatalf("reading min rtt ecdf: %v", err)
	}
	if len(minBytes) == 0 {
		t.Error("expected a non-empty min-rtt ecdf for the one reachable pair")
	}
}

func TestAnalyzeRTTGeometryViolationPropagates(t *testing.T) {
	sats, grounds := buildFixtureConstellation(t)
	epoch := sats[0].Propagator.TLE().Epoch.Time()

	stateDir := t.TempDir()
	outDir := t.TempDir()

	// Hop 0->1 is not a declared ISL, so PathLength must reject it fatally.
	writeDeltaFile(t, stateDir, 0, "4,5,0,0,0\n0,5,1,0,0\n1,5,5,0,0\n")

	err := AnalyzeRTT(RTTParams{
		Epoch:          epoch,
		Satellites:     sats,
		GroundStations: grounds,
		ISLs:           nil, // no declared ISLs at all
		MaxIslLengthM:  1e9,
		MaxGslLengthM:  1e9,
		StateDir:       stateDir,
		OutDir:         outDir,
		StepNs:         1000,
		EndNs:          1000,
	})
	if err == nil {
		t.Fatal("expected a geometry violation error when the path uses an undeclared ISL hop")
	}
}
