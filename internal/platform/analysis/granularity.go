package analysis

import "fmt"

// pathSequence collects every recorded path a pair visited, in order,
// including a nil entry for "unreachable" — one entry per transition,
// mirroring pairPathTrace's recording rule (repeats collapse, only the
// first occurrence of a run is kept).
type pathSequence struct {
	trace   pairPathTrace
	entries [][]int
}

func (s *pathSequence) observe(path []int) {
	if s.trace.observe(path) {
		s.entries = append(s.entries, path)
	}
}

func pathKey(path []int) string { return fmt.Sprint(path) }

// traceSequences replays a state directory's full delta stream at its own
// step size and returns, per ground-station pair, the sequence of distinct
// paths visited.
func traceSequences(stateDir string, stepNs, endNs int64, numSat, numGs int) ([][]*pathSequence, error) {
	seqs := make([][]*pathSequence, numGs)
	for i := range seqs {
		seqs[i] = make([]*pathSequence, numGs)
		for j := range seqs[i] {
			seqs[i][j] = &pathSequence{}
		}
	}

	fstate := NewFstate()
	for t := int64(0); t < endNs; t += stepNs {
		if _, err := ApplyDeltaFile(fstate, stateDir, t); err != nil {
			return nil, err
		}
		for src := 0; src < numGs; src++ {
			for dst := src + 1; dst < numGs; dst++ {
				path, err := GetPath(numSat+src, numSat+dst, fstate)
				if err != nil {
					return nil, err
				}
				seqs[src][dst].observe(path)
			}
		}
	}
	return seqs, nil
}

// GranularityReport summarizes one alternative step size's fidelity against
// the baseline (smallest) step size: how many of the baseline's path
// transitions never appear anywhere in the coarser trace for the same pair.
type GranularityReport struct {
	StepNs        int64
	MissedChanges int
	TotalChanges  int
}

// AnalyzeGranularity measures how robust a run's path-change trace is to the
// choice of time-step size: for each alternative step size, count how many
// path changes present in the baseline (smallest step size) trace are
// missed by the coarser trace. A
// baseline transition is "missed" for a pair if the path it transitions to
// never appears anywhere in that pair's path sequence at the alternative
// granularity — the coarser sampling simply never observed that path.
func AnalyzeGranularity(baselineStepNs int64, baselineStateDir string, alternatives map[int64]string, endNs int64, numSat, numGs int) ([]GranularityReport, error) {
	baseline, err := traceSequences(baselineStateDir, baselineStepNs, endNs, numSat, numGs)
	if err != nil {
		return nil, err
	}

	var reports []GranularityReport
	for stepNs, dir := range alternatives {
		alt, err := traceSequences(dir, stepNs, endNs, numSat, numGs)
		if err != nil {
			return nil, err
		}

		report := GranularityReport{StepNs: stepNs}
		for src := 0; src < numGs; src++ {
			for dst := src + 1; dst < numGs; dst++ {
				baseEntries := baseline[src][dst].entries
				if len(baseEntries) <= 1 {
					continue
				}
				altSeen := make(map[string]bool, len(alt[src][dst].entries))
				for _, p := range alt[src][dst].entries {
					altSeen[pathKey(p)] = true
				}
				for _, p := range baseEntries[1:] {
					report.TotalChanges++
					if !altSeen[pathKey(p)] {
						report.MissedChanges++
					}
				}
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}
