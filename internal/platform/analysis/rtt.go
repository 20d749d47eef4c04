package analysis

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/asgard/satnet/internal/platform/geometry"
	"github.com/asgard/satnet/internal/platform/topology"
)

// SpeedOfLightMPerS is the constant the RTT computation divides total path
// length by.
const SpeedOfLightMPerS = 299792458.0

// GeodesicEcdfCutoffM excludes ground-station pairs closer than this from
// the max-RTT-to-geodesic-RTT slowdown ECDF: below it, a terrestrial link
// would be used in practice, and the "slowdown" figure is not meaningful.
const GeodesicEcdfCutoffM = 500_000.0

// RTTParams bundles the static inputs one analyze_rtt run needs.
type RTTParams struct {
	Epoch           time.Time
	Satellites      []topology.Satellite
	GroundStations  []topology.GroundStation
	ISLs            []topology.ISL
	MaxIslLengthM   float64
	MaxGslLengthM   float64
	StateDir        string // dynamic_state_<ms>ms_for_<s>s directory
	OutDir          string // where ecdf_*.txt and top_10_*.txt are written
	StepNs, EndNs   int64
	ProgressEveryPc int // if >0, log progress every N percent (0 disables)
}

// rttPairSamples accumulates one (src,dst) pair's per-time-step RTT samples
// and unreachable count across the run.
type rttPairSamples struct {
	rttNs       []float64
	unreachable int
}

// AnalyzeRTT replays the fstate delta stream alongside live geometry,
// computing the round-trip time of every ground-station pair at every time
// step, then emits the RTT ECDF and top-10 report files.
func AnalyzeRTT(p RTTParams) error {
	numSat := len(p.Satellites)
	numGs := len(p.GroundStations)
	isls := NewISLSet(p.ISLs)

	samples := make([][]*rttPairSamples, numGs)
	for i := range samples {
		samples[i] = make([]*rttPairSamples, numGs)
		for j := range samples[i] {
			samples[i][j] = &rttPairSamples{}
		}
	}

	numSteps := p.EndNs / p.StepNs
	lastReportedPc := -p.ProgressEveryPc

	fstate := NewFstate()
	for t := int64(0); t < p.EndNs; t += p.StepNs {
		if _, err := ApplyDeltaFile(fstate, p.StateDir, t); err != nil {
			return err
		}
		instant := p.Epoch.Add(time.Duration(t))

		if p.ProgressEveryPc > 0 && numSteps > 0 {
			pc := int(t / p.StepNs * 100 / numSteps)
			if pc >= lastReportedPc+p.ProgressEveryPc {
				log.Printf("analyze_rtt: %d%% of time steps replayed", pc)
				lastReportedPc = pc
			}
		}

		for src := 0; src < numGs; src++ {
			for dst := src + 1; dst < numGs; dst++ {
				srcNode := numSat + src
				dstNode := numSat + dst
				path, err := GetPath(srcNode, dstNode, fstate)
				if err != nil {
					return err
				}
				if path == nil {
					samples[src][dst].unreachable++
					continue
				}
				length, err := PathLength(instant, numSat, p.Satellites, p.GroundStations, isls, p.MaxIslLengthM, p.MaxGslLengthM, path)
				if err != nil {
					return err
				}
				rttNs := 2 * length * 1e9 / SpeedOfLightMPerS
				samples[src][dst].rttNs = append(samples[src][dst].rttNs, rttNs)
			}
		}
	}

	return writeRTTReports(p, samples)
}

func writeRTTReports(p RTTParams, samples [][]*rttPairSamples) error {
	numGs := len(p.GroundStations)

	var minList, maxList, deltaList, slowdownList, geodesicSlowdownList []float64
	var deltaMetrics, unreachableMetrics []PairMetric

	for src := 0; src < numGs; src++ {
		for dst := src + 1; dst < numGs; dst++ {
			s := samples[src][dst]
			unreachableMetrics = append(unreachableMetrics, PairMetric{Src: src, Dst: dst, Value: float64(s.unreachable)})
			if len(s.rttNs) == 0 {
				continue
			}
			min, max, err := summaryMinMax(s.rttNs)
			if err != nil {
				return err
			}
			minList = append(minList, min)
			maxList = append(maxList, max)
			deltaList = append(deltaList, max-min)
			slowdownList = append(slowdownList, max/min)
			deltaMetrics = append(deltaMetrics, PairMetric{Src: src, Dst: dst, Value: max - min, Extra: []float64{min, max}})

			geodesicM := geometry.GeodesicDistanceBetweenGroundStations(
				p.GroundStations[src].LatDeg, p.GroundStations[src].LonDeg,
				p.GroundStations[dst].LatDeg, p.GroundStations[dst].LonDeg)
			if geodesicM >= GeodesicEcdfCutoffM {
				geodesicRttNs := geodesicM * 2 * 1e9 / SpeedOfLightMPerS
				geodesicSlowdownList = append(geodesicSlowdownList, max/geodesicRttNs)
			}
		}
	}

	for _, e := range []struct {
		name   string
		values []float64
	}{
		{"ecdf_pairs_min_rtt_ns", minList},
		{"ecdf_pairs_max_rtt_ns", maxList},
		{"ecdf_pairs_max_minus_min_rtt_ns", deltaList},
		{"ecdf_pairs_max_rtt_to_min_rtt_slowdown", slowdownList},
		{"ecdf_pairs_max_rtt_to_geodesic_slowdown", geodesicSlowdownList},
	} {
		if err := WriteECDF(filepath.Join(p.OutDir, e.name+".txt"), ComputeECDF(e.values)); err != nil {
			return err
		}
	}

	top10Delta := Top10NoDuplicateNodes(deltaMetrics)
	if err := WriteTopKReport(
		filepath.Join(p.OutDir, "top_10_largest_rtt_delta.txt"),
		"LARGEST RTT DELTA TOP-10 WITHOUT DUPLICATE NODES",
		"#      Pair           Delta (ms)   Min. RTT (ms)   Max. RTT (ms)",
		top10Delta,
		func(rank int, m PairMetric) string {
			numSat := len(p.Satellites)
			return fmt.Sprintf("%-3d    %-4d -> %4d   %-8.2f     %-8.2f        %-8.2f",
				rank, numSat+m.Src, numSat+m.Dst, m.Value/1e6, m.Extra[0]/1e6, m.Extra[1]/1e6)
		},
	); err != nil {
		return err
	}

	top10Unreachable := Top10NoDuplicateNodes(unreachableMetrics)
	return WriteTopKReport(
		filepath.Join(p.OutDir, "top_10_most_unreachable.txt"),
		"MOST UNREACHABLE DELTA TOP-10 WITHOUT DUPLICATE NODES",
		"#      Pair           Times unreachable",
		top10Unreachable,
		func(rank int, m PairMetric) string {
			numSat := len(p.Satellites)
			return fmt.Sprintf("%-3d    %-4d -> %4d   %d", rank, numSat+m.Src, numSat+m.Dst, int(m.Value))
		},
	)
}
