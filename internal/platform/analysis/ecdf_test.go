package analysis

import (
	"math"
	"testing"
)

func TestComputeECDF(t *testing.T) {
	points := ComputeECDF([]float64{3, 1, 2})
	want := []ECDFPoint{{math.Inf(-1), 0}, {1, 1.0 / 3}, {2, 2.0 / 3}, {3, 1.0}}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i, p := range points {
		if p.X != want[i].X || p.Y != want[i].Y {
			t.Errorf("point %d: got %+v, want %+v", i, p, want[i])
		}
	}
}

func TestComputeECDFEmpty(t *testing.T) {
	if points := ComputeECDF(nil); points != nil {
		t.Errorf("expected nil for empty input, got %v", points)
	}
}

func TestTop10NoDuplicateNodes(t *testing.T) {
	metrics := []PairMetric{
		{Src: 0, Dst: 1, Value: 10},
		{Src: 0, Dst: 2, Value: 20}, // shares node 0 with the above
		{Src: 3, Dst: 4, Value: 15},
	}
	top := Top10NoDuplicateNodes(metrics)
	if len(top) != 2 {
		t.Fatalf("got %d entries, want 2 (dedup should drop the node-0 conflict)", len(top))
	}
	if top[0].Src != 0 || top[0].Dst != 2 {
		t.Errorf("expected the highest-value pair (0,2) first, got %+v", top[0])
	}
	if top[1].Src != 3 || top[1].Dst != 4 {
		t.Errorf("expected (3,4) second, got %+v", top[1])
	}
}
