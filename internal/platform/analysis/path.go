package analysis

import (
	"fmt"
	"path/filepath"

	"github.com/asgard/satnet/internal/platform/topology"
)

// PathParams bundles the static inputs one analyze_path run needs. Unlike
// AnalyzeRTT, path analysis never re-queries live geometry: it only replays
// the fstate delta stream and counts path transitions and hop counts.
type PathParams struct {
	Satellites     []topology.Satellite
	GroundStations []topology.GroundStation
	StateDir       string
	OutDir         string
	StepNs, EndNs  int64
}

// pairPathTrace tracks one ground-station pair's recorded path history: the
// last *appended* path (a pair's path is only appended when it differs from
// the previous recording, never on every time step), how many times it was
// appended, and the hop count of every reachable path appended.
type pairPathTrace struct {
	lastReachable bool
	lastPath      []int
	numRecorded   int
	hopCounts     []int
}

func (tr *pairPathTrace) observe(path []int) (changed bool) {
	reachable := path != nil
	if tr.numRecorded > 0 && reachable == tr.lastReachable && (!reachable || pathsEqual(path, tr.lastPath)) {
		return false
	}
	tr.lastReachable = reachable
	tr.lastPath = path
	tr.numRecorded++
	if reachable {
		tr.hopCounts = append(tr.hopCounts, len(path)-1)
	}
	return true
}

func pathsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AnalyzePath replays the fstate delta stream, tracking every ground-station
// pair's path-change history and hop counts, then emits the path ECDF and
// top-10 report files.
func AnalyzePath(p PathParams) error {
	numSat := len(p.Satellites)
	numGs := len(p.GroundStations)

	traces := make([][]*pairPathTrace, numGs)
	for i := range traces {
		traces[i] = make([]*pairPathTrace, numGs)
		for j := range traces[i] {
			traces[i][j] = &pairPathTrace{}
		}
	}

	var timeStepPathChanges, timeStepFstateUpdates []int

	fstate := NewFstate()
	iteration := 0
	for t := int64(0); t < p.EndNs; t += p.StepNs {
		applied, err := ApplyDeltaFile(fstate, p.StateDir, t)
		if err != nil {
			return err
		}
		numPathChanges := 0

		for src := 0; src < numGs; src++ {
			for dst := src + 1; dst < numGs; dst++ {
				path, err := GetPath(numSat+src, numSat+dst, fstate)
				if err != nil {
					return err
				}
				if traces[src][dst].observe(path) {
					numPathChanges++
				}
			}
		}

		// The first iteration has an update for every pair, which is not a
		// "change" worth recording in the per-time-step ECDFs.
		if iteration != 0 {
			timeStepPathChanges = append(timeStepPathChanges, numPathChanges)
			timeStepFstateUpdates = append(timeStepFstateUpdates, applied)
		}
		iteration++
	}

	return writePathReports(p, traces, timeStepPathChanges, timeStepFstateUpdates)
}

func writePathReports(p PathParams, traces [][]*pairPathTrace, timeStepPathChanges, timeStepFstateUpdates []int) error {
	numSat := len(p.Satellites)
	numGs := len(p.GroundStations)

	var deltaList, ratioList, numChangesList []float64
	var deltaMetrics, changesMetrics []PairMetric

	for src := 0; src < numGs; src++ {
		for dst := src + 1; dst < numGs; dst++ {
			tr := traces[src][dst]
			if len(tr.hopCounts) == 0 {
				continue
			}
			hc := make([]float64, len(tr.hopCounts))
			for i, h := range tr.hopCounts {
				hc[i] = float64(h)
			}
			min, max, err := summaryMinMax(hc)
			if err != nil {
				return err
			}
			deltaList = append(deltaList, max-min)
			ratioList = append(ratioList, max/min)
			numChanges := tr.numRecorded - 1
			numChangesList = append(numChangesList, float64(numChanges))
			deltaMetrics = append(deltaMetrics, PairMetric{Src: src, Dst: dst, Value: max - min, Extra: []float64{min, max}})
			changesMetrics = append(changesMetrics, PairMetric{Src: src, Dst: dst, Value: float64(numChanges)})
		}
	}

	intsToFloats := func(ints []int) []float64 {
		out := make([]float64, len(ints))
		for i, v := range ints {
			out[i] = float64(v)
		}
		return out
	}

	for _, e := range []struct {
		name   string
		values []float64
	}{
		{"ecdf_pairs_max_minus_min_hop_count", deltaList},
		{"ecdf_pairs_max_hop_count_to_min_hop_count", ratioList},
		{"ecdf_pairs_num_path_changes", numChangesList},
		{"ecdf_time_step_num_path_changes", intsToFloats(timeStepPathChanges)},
		{"ecdf_time_step_num_fstate_updates", intsToFloats(timeStepFstateUpdates)},
	} {
		if err := WriteECDF(filepath.Join(p.OutDir, e.name+".txt"), ComputeECDF(e.values)); err != nil {
			return err
		}
	}

	top10Delta := Top10NoDuplicateNodes(deltaMetrics)
	if err := WriteTopKReport(
		filepath.Join(p.OutDir, "top_10_largest_hop_count_delta.txt"),
		"LARGEST HOP-COUNT DELTA TOP-10 WITHOUT DUPLICATE NODES (EXCL. UNREACHABLE)",
		"#      Pair              Delta         Min. hop count    Max. hop count",
		top10Delta,
		func(rank int, m PairMetric) string {
			return fmt.Sprintf("%-3d    %-4d -> %4d       %8.0f     %-8.0f          %-8.0f",
				rank, numSat+m.Src, numSat+m.Dst, m.Value, m.Extra[0], m.Extra[1])
		},
	); err != nil {
		return err
	}

	top10Changes := Top10NoDuplicateNodes(changesMetrics)
	return WriteTopKReport(
		filepath.Join(p.OutDir, "top_10_most_path_changes.txt"),
		"MOST PATH CHANGES TOP-10 WITHOUT DUPLICATE NODES",
		"#      Pair           Number of path changes",
		top10Changes,
		func(rank int, m PairMetric) string {
			return fmt.Sprintf("%-3d    %-4d -> %4d   %d", rank, numSat+m.Src, numSat+m.Dst, int(m.Value))
		},
	)
}
