package analysis

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAnalyzePathTracksChangesAndWritesReports(t *testing.T) {
	sats, grounds := buildFixtureConstellation(t)

	stateDir := t.TempDir()
	outDir := t.TempDir()

	writeDeltaFile(t, stateDir, 0, "4,5,5,0,0\n")
	writeDeltaFile(t, stateDir, 1000, "")
	writeDeltaFile(t, stateDir, 2000, "4,5,0,0,0\n0,5,5,0,0\n")

	err := AnalyzePath(PathParams{
		Satellites:     sats,
		GroundStations: grounds,
		StateDir:       stateDir,
		OutDir:         outDir,
		StepNs:         1000,
		EndNs:          3000,
	})
	if err != nil {
		t.Fatalf("AnalyzePath failed: %v", err)
	}

	for _, name := range []string{
		"ecdf_pairs_max_minus_min_hop_count.txt",
		"ecdf_pairs_max_hop_count_to_min_hop_count.txt",
		"ecdf_pairs_num_path_changes.txt",
		"ecdf_time_step_num_path_changes.txt",
		"ecdf_time_step_num_fstate_updates.txt",
		"top_10_largest_hop_count_delta.txt",
		"top_10_most_path_changes.txt",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected report %s to be written: %v", name, err)
		}
	}

	deltaBytes, err := os.ReadFile(filepath.Join(outDir, "ecdf_pairs_max_minus_min_hop_count.txt"))
	if err != nil {
		t.Fatalf("reading delta ecdf: %v", err)
	}
	if len(deltaBytes) == 0 {
		t.Error("expected non-empty hop-count-delta ecdf for the one pair that changed path")
	}
}

func TestPairPathTraceObserveCollapsesRepeats(t *testing.T) {
	var tr pairPathTrace
	if !tr.observe([]int{0, 1}) {
		t.Fatal("first observation should always count as a change")
	}
	if tr.observe([]int{0, 1}) {
		t.Error("repeating the same path should not count as a change")
	}
	if !tr.observe([]int{0, 2}) {
		t.Error("a different path should count as a change")
	}
	if !tr.observe(nil) {
		t.Error("transitioning to unreachable should count as a change")
	}
	if tr.observe(nil) {
		t.Error("repeating unreachable should not count as a change")
	}
	if len(tr.hopCounts) != 2 {
		t.Errorf("expected 2 recorded hop counts (unreachable excluded), got %d", len(tr.hopCounts))
	}
}
