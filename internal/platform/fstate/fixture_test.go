package fstate

import "github.com/asgard/satnet/internal/platform/topology"

// buildFixtureSnapshot returns a 2-satellite, 1-ground-station snapshot: a
// single ISL (0,1) of weight 100, and ground station 0 in range of both
// satellites (distance 10 to sat0, 50 to sat1) so the "closer candidate
// wins" and "direct GSL beats ISL-mediated relay" branches are both
// exercised by the tests built on top of it.
func buildFixtureSnapshot() *topology.Snapshot {
	return &topology.Snapshot{
		ISLNeighbors: [][]topology.SatId{
			0: {1},
			1: {0},
		},
		ISLWeight: map[[2]topology.SatId]float64{
			{0, 1}: 100,
			{1, 0}: 100,
		},
		InRangeSats: [][]topology.GSLCandidate{
			0: {{Sat: 0, Distance: 10}, {Sat: 1, Distance: 50}},
		},
	}
}

func buildFixtureIfaceMap() *topology.InterfaceMap {
	m, err := topology.NewInterfaceMap(2, []topology.ISL{{A: 0, B: 1}})
	if err != nil {
		panic(err)
	}
	return m
}

func buildFixtureIfaceInfo() []topology.IfaceInfo {
	return []topology.IfaceInfo{
		{InterfaceCount: 2, AggregateMaxBandwidth: 2.0}, // sat0: 1 isl + 1 gsl
		{InterfaceCount: 2, AggregateMaxBandwidth: 2.0}, // sat1: 1 isl + 1 gsl
		{InterfaceCount: 1, AggregateMaxBandwidth: 1.0}, // gs0
	}
}
