package analysis

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/asgard/satnet/internal/platform/apierrors"
	"github.com/montanaflynn/stats"
)

// ECDFPoint is one (value, cumulative fraction) sample of an empirical
// cumulative distribution function.
type ECDFPoint struct {
	X, Y float64
}

// ComputeECDF returns the step-function empirical CDF of values: a leading
// (-Inf, 0) anchor, then the values sorted ascending, each paired with the
// fraction of the sample at or below it (one point per sample, duplicates
// included).
func ComputeECDF(values []float64) []ECDFPoint {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	points := make([]ECDFPoint, 0, len(sorted)+1)
	points = append(points, ECDFPoint{X: math.Inf(-1), Y: 0})
	n := float64(len(sorted))
	for i, v := range sorted {
		points = append(points, ECDFPoint{X: v, Y: float64(i+1) / n})
	}
	return points
}

// WriteECDF writes an ECDF's (x,y) pairs to path as "x,y\n" lines, the
// format ecdf_<metric>.txt files use.
func WriteECDF(path string, points []ECDFPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return apierrors.NewIoFailure(path, err)
	}
	defer f.Close()
	for _, p := range points {
		if _, err := fmt.Fprintf(f, "%v,%v\n", p.X, p.Y); err != nil {
			return apierrors.NewIoFailure(path, err)
		}
	}
	return nil
}

// summaryMinMax returns the min and max of values via montanaflynn/stats,
// used for the per-pair min/max that feed the ECDFs and the largest-delta
// top-k reports.
func summaryMinMax(values []float64) (min, max float64, err error) {
	data := stats.Float64Data(values)
	min, err = data.Min()
	if err != nil {
		return 0, 0, fmt.Errorf("analysis: min of empty sample: %w", err)
	}
	max, err = data.Max()
	if err != nil {
		return 0, 0, fmt.Errorf("analysis: max of empty sample: %w", err)
	}
	return min, max, nil
}
