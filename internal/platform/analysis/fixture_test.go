package analysis

import (
	"testing"

	"github.com/asgard/satnet/internal/platform/geometry"
	"github.com/asgard/satnet/internal/platform/satellite"
	"github.com/asgard/satnet/internal/platform/topology"
)

// buildFixtureConstellation returns a small, deterministic 2-orbit,
// 2-satellites-per-orbit constellation (via the synthetic TLE generator) plus
// two ground stations, for use across the analysis package's tests.
func buildFixtureConstellation(t *testing.T) ([]topology.Satellite, []topology.GroundStation) {
	t.Helper()

	tles, err := satellite.GenerateTLEs(satellite.ConstellationSpec{
		Name:                "test",
		NumOrbits:           2,
		SatsPerOrbit:        2,
		PhaseDiff:           false,
		InclinationDeg:      53.0,
		Eccentricity:        0.0001,
		ArgOfPerigeeDeg:     0.0,
		MeanMotionRevPerDay: 15.19,
	})
	if err != nil {
		t.Fatalf("generating fixture TLEs: %v", err)
	}

	sats := make([]topology.Satellite, len(tles))
	for i, tle := range tles {
		prop, err := satellite.NewPropagator(tle)
		if err != nil {
			t.Fatalf("building propagator %d: %v", i, err)
		}
		sats[i] = topology.Satellite{ID: topology.SatId(i), Name: tle.Name, Propagator: prop}
	}

	grounds := []topology.GroundStation{
		{ID: 0, Name: "gs0", LatDeg: 40.0, LonDeg: -74.0, ElevM: 10, ECEF: geometry.GeodeticToECEF(40.0, -74.0, 10)},
		{ID: 1, Name: "gs1", LatDeg: 51.5, LonDeg: -0.1, ElevM: 20, ECEF: geometry.GeodeticToECEF(51.5, -0.1, 20)},
	}
	return sats, grounds
}
