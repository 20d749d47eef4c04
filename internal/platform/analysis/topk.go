package analysis

import (
	"fmt"
	"os"
	"sort"

	"github.com/asgard/satnet/internal/platform/apierrors"
)

// PairMetric is one ground-station-pair sample feeding a top-10 report: the
// pair's two ground ids and the ranking value (already expressed in whatever
// unit the report's header states).
type PairMetric struct {
	Src, Dst int
	Value    float64
	Extra    []float64 // report-specific extra columns, e.g. min/max RTT
}

// Top10NoDuplicateNodes sorts metrics descending by Value and selects up to
// 10 of them, skipping any pair that would reuse a ground-station endpoint
// already chosen, so a single hot station cannot dominate a report.
func Top10NoDuplicateNodes(metrics []PairMetric) []PairMetric {
	sorted := make([]PairMetric, len(metrics))
	copy(sorted, metrics)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	var out []PairMetric
	seen := make(map[int]bool)
	for _, m := range sorted {
		if seen[m.Src] || seen[m.Dst] {
			continue
		}
		out = append(out, m)
		seen[m.Src] = true
		seen[m.Dst] = true
		if len(out) >= 10 {
			break
		}
	}
	return out
}

// WriteTopKReport writes a top-10 report file: a title, a header line, one
// row per entry (formatted by rowFmt), and a closing rule.
func WriteTopKReport(path, title, header string, entries []PairMetric, rowFmt func(rank int, m PairMetric) string) error {
	f, err := os.Create(path)
	if err != nil {
		return apierrors.NewIoFailure(path, err)
	}
	defer f.Close()

	rule := "---------------------------------------------------------------"
	fmt.Fprintf(f, "%s\n%s\n%s\n", title, rule, header)
	for i, m := range entries {
		fmt.Fprintln(f, rowFmt(i+1, m))
	}
	fmt.Fprintf(f, "%s\n\n", rule)
	return nil
}
