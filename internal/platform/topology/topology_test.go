package topology

import (
	"testing"
	"time"

	"github.com/asgard/satnet/internal/platform/geometry"
	"github.com/asgard/satnet/internal/platform/satellite"
)

func TestNewInterfaceMapAssignsIndicesInDeclarationOrder(t *testing.T) {
	isls := []ISL{{A: 0, B: 1}, {A: 0, B: 2}, {A: 1, B: 2}}
	m, err := NewInterfaceMap(3, isls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.IfaceFor(0, 1) != 0 {
		t.Errorf("sat0's first ISL should get interface 0")
	}
	if m.IfaceFor(0, 2) != 1 {
		t.Errorf("sat0's second ISL should get interface 1")
	}
	if m.IfaceFor(1, 0) != 0 {
		t.Errorf("sat1's first ISL (to sat0) should get interface 0")
	}
	if m.IfaceFor(1, 2) != 1 {
		t.Errorf("sat1's second ISL (to sat2) should get interface 1")
	}
	if m.NumISLs(0) != 2 {
		t.Errorf("sat0 NumISLs = %d, want 2", m.NumISLs(0))
	}
}

func TestNewInterfaceMapRejectsSelfLoop(t *testing.T) {
	if _, err := NewInterfaceMap(2, []ISL{{A: 0, B: 0}}); err == nil {
		t.Fatal("expected error for self-loop ISL")
	}
}

func TestNewInterfaceMapRejectsBNotGreaterThanA(t *testing.T) {
	if _, err := NewInterfaceMap(2, []ISL{{A: 1, B: 0}}); err == nil {
		t.Fatal("expected error when b <= a")
	}
}

func TestNewInterfaceMapRejectsOutOfRange(t *testing.T) {
	if _, err := NewInterfaceMap(2, []ISL{{A: 0, B: 5}}); err == nil {
		t.Fatal("expected error for out-of-range satellite id")
	}
}

func TestNewInterfaceMapRejectsDuplicate(t *testing.T) {
	if _, err := NewInterfaceMap(2, []ISL{{A: 0, B: 1}, {A: 0, B: 1}}); err == nil {
		t.Fatal("expected error for duplicate ISL")
	}
}

func TestIfaceForPanicsOnUndeclaredISL(t *testing.T) {
	m, err := NewInterfaceMap(3, []ISL{{A: 0, B: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an undeclared ISL pair")
		}
	}()
	m.IfaceFor(0, 2)
}

func TestToNodeIdAndIsGroundNode(t *testing.T) {
	if ToNodeId(4, 0) != 4 || ToNodeId(4, 2) != 6 {
		t.Error("ToNodeId should offset ground ids by numSats")
	}
	if IsGroundNode(4, 3) {
		t.Error("node 3 should be a satellite when numSats=4")
	}
	if !IsGroundNode(4, 4) {
		t.Error("node 4 should be the first ground node when numSats=4")
	}
}

func buildTestSatellites(t *testing.T) []Satellite {
	t.Helper()
	tles, err := satellite.GenerateTLEs(satellite.ConstellationSpec{
		NumOrbits: 1, SatsPerOrbit: 2, InclinationDeg: 53.0, MeanMotionRevPerDay: 15.19,
	})
	if err != nil {
		t.Fatalf("unexpected error generating fixture TLEs: %v", err)
	}
	sats := make([]Satellite, len(tles))
	for i, tle := range tles {
		prop, err := satellite.NewPropagator(tle)
		if err != nil {
			t.Fatalf("unexpected error building propagator: %v", err)
		}
		sats[i] = Satellite{ID: SatId(i), Name: tle.Name, Propagator: prop}
	}
	return sats
}

func TestBuildSnapshotFatalOnISLTooLong(t *testing.T) {
	sats := buildTestSatellites(t)
	epoch := sats[0].Propagator.TLE().Epoch.Time()
	_, err := BuildSnapshot(epoch, sats, nil, []ISL{{A: 0, B: 1}}, 1.0, 1e9)
	if err == nil {
		t.Fatal("expected fatal error when ISL length exceeds max_isl_length_m")
	}
}

func TestBuildSnapshotComputesInRangeSatellites(t *testing.T) {
	sats := buildTestSatellites(t)
	epoch := sats[0].Propagator.TLE().Epoch.Time()

	grounds := []GroundStation{
		{ID: 0, Name: "g0", LatDeg: 40, LonDeg: -74, ElevM: 0, ECEF: geometry.GeodeticToECEF(40, -74, 0)},
	}
	snap, err := BuildSnapshot(epoch, sats, grounds, nil, 1e9, 1e9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.SatPos) != 2 {
		t.Fatalf("got %d satellite positions, want 2", len(snap.SatPos))
	}
	// With a generous 1e9m GSL bound, every satellite should be "in range".
	if len(snap.InRangeSats[0]) != 2 {
		t.Errorf("got %d in-range satellites, want 2 with a generous bound", len(snap.InRangeSats[0]))
	}
}

func TestBuildSnapshotNoInRangeSatellitesWithTightBound(t *testing.T) {
	sats := buildTestSatellites(t)
	epoch := sats[0].Propagator.TLE().Epoch.Time()

	grounds := []GroundStation{
		{ID: 0, Name: "g0", LatDeg: 40, LonDeg: -74, ElevM: 0, ECEF: geometry.GeodeticToECEF(40, -74, 0)},
	}
	snap, err := BuildSnapshot(epoch, sats, grounds, nil, 1e9, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.InRangeSats[0]) != 0 {
		t.Errorf("expected no satellites in range of a 1-meter bound, got %d", len(snap.InRangeSats[0]))
	}
}

func TestBuildSnapshotTimestamped(t *testing.T) {
	sats := buildTestSatellites(t)
	now := time.Now()
	snap, err := BuildSnapshot(now, sats, nil, nil, 1e9, 1e9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.T.Equal(now) {
		t.Errorf("snapshot time = %v, want %v", snap.T, now)
	}
}
