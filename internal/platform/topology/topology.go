// Package topology builds the per-time-step network state the forwarding-
// state engine runs shortest paths over: the ISL-only satellite graph and the
// per-ground-station in-range satellite lists. The combined ISL+GSL graph
// used by relay-capable algorithms is assembled from this snapshot by the
// fstate package. It owns the dense node identifier space and the satellite
// interface-index layout invariant.
package topology

import (
	"fmt"
	"sort"
	"time"

	"github.com/asgard/satnet/internal/platform/geometry"
	"github.com/asgard/satnet/internal/platform/satellite"
)

// SatId is a dense satellite identifier in [0, N_sat).
type SatId int

// GroundId is a dense ground station identifier in [0, N_gs).
type GroundId int

// NodeId unifies satellites and ground stations: a satellite keeps its
// SatId; ground station g has NodeId = N_sat + g.
type NodeId int

// IfaceIdx indexes an interface within its owning node.
type IfaceIdx int

// Satellite is one constellation member: its orbital propagator plus a
// display name. Immutable after construction.
type Satellite struct {
	ID         SatId
	Name       string
	Propagator *satellite.Propagator
}

// GroundStation is one Earth-surface station. ECEF is derived once from
// lat/lon/elevation and never recomputed or cross-checked against a
// separately supplied Cartesian triple.
type GroundStation struct {
	ID     GroundId
	Name   string
	LatDeg float64
	LonDeg float64
	ElevM  float64
	ECEF   geometry.Vector3
}

// IfaceInfo is the per-node interface metadata: how many interfaces it owns
// and the aggregate bandwidth its GSL ifaces share.
type IfaceInfo struct {
	InterfaceCount        uint32
	AggregateMaxBandwidth float64
}

// ISL is an unordered, permanent inter-satellite link declaration.
type ISL struct {
	A, B SatId // A < B
}

// GSLCandidate is one ground-station-to-satellite visibility entry.
type GSLCandidate struct {
	Sat      SatId
	Distance float64
}

// InterfaceMap is the global, time-invariant mapping from (satellite, its
// ISL neighbor) to that satellite's local interface index for the link, plus
// the number of ISL interfaces each satellite owns. Interfaces are assigned
// in ISL-declaration order: processing ISL (a,b) gives a and b each their
// next free index for the other.
type InterfaceMap struct {
	numSats         int
	satNeighborToIf map[[2]SatId]IfaceIdx // keyed (owner, neighbor)
	numISLsPerSat   []int
}

// NewInterfaceMap validates an ISL list (in-range ids, a<b, no duplicates,
// no self-loops) and assigns interface indices deterministically.
func NewInterfaceMap(numSats int, isls []ISL) (*InterfaceMap, error) {
	m := &InterfaceMap{
		numSats:         numSats,
		satNeighborToIf: make(map[[2]SatId]IfaceIdx, len(isls)*2),
		numISLsPerSat:   make([]int, numSats),
	}
	seen := make(map[[2]SatId]bool, len(isls))
	for _, isl := range isls {
		if isl.A < 0 || int(isl.A) >= numSats || isl.B < 0 || int(isl.B) >= numSats {
			return nil, fmt.Errorf("topology: ISL (%d,%d) references out-of-range satellite id", isl.A, isl.B)
		}
		if isl.A == isl.B {
			return nil, fmt.Errorf("topology: ISL self-loop at satellite %d", isl.A)
		}
		if isl.B <= isl.A {
			return nil, fmt.Errorf("topology: ISL (%d,%d) must have a < b", isl.A, isl.B)
		}
		key := [2]SatId{isl.A, isl.B}
		if seen[key] {
			return nil, fmt.Errorf("topology: duplicate ISL (%d,%d)", isl.A, isl.B)
		}
		seen[key] = true

		m.satNeighborToIf[[2]SatId{isl.A, isl.B}] = IfaceIdx(m.numISLsPerSat[isl.A])
		m.numISLsPerSat[isl.A]++
		m.satNeighborToIf[[2]SatId{isl.B, isl.A}] = IfaceIdx(m.numISLsPerSat[isl.B])
		m.numISLsPerSat[isl.B]++
	}
	return m, nil
}

// IfaceFor returns owner's interface index for the ISL connecting it to
// neighbor. Panics if (owner, neighbor) is not a declared ISL — callers must
// only invoke this on graph edges that originate from the ISL list.
func (m *InterfaceMap) IfaceFor(owner, neighbor SatId) IfaceIdx {
	idx, ok := m.satNeighborToIf[[2]SatId{owner, neighbor}]
	if !ok {
		panic(fmt.Sprintf("topology: (%d,%d) is not a declared ISL", owner, neighbor))
	}
	return idx
}

// NumISLs returns how many ISL interfaces satellite s owns.
func (m *InterfaceMap) NumISLs(s SatId) int { return m.numISLsPerSat[s] }

// Snapshot is the network state at one instant: current ISL edge weights,
// per-ground-station in-range satellite lists, and ISL-neighbor adjacency.
type Snapshot struct {
	T            time.Time
	SatPos       []geometry.Vector3 // ECEF position per satellite, indexed by SatId
	ISLNeighbors [][]SatId          // ISL adjacency list per satellite
	ISLWeight    map[[2]SatId]float64
	InRangeSats  [][]GSLCandidate // per ground station, satellites within max_gsl_length_m
}

// BuildSnapshot recomputes satellite positions, ISL edge lengths (asserting
// each stays within maxIslM — a violation is fatal, never silently
// filtered), and per-ground-station in-range satellite lists at time t.
func BuildSnapshot(t time.Time, sats []Satellite, groundStations []GroundStation, isls []ISL, maxIslM, maxGslM float64) (*Snapshot, error) {
	snap := &Snapshot{
		T:            t,
		SatPos:       make([]geometry.Vector3, len(sats)),
		ISLNeighbors: make([][]SatId, len(sats)),
		ISLWeight:    make(map[[2]SatId]float64, len(isls)*2),
		InRangeSats:  make([][]GSLCandidate, len(groundStations)),
	}

	for _, s := range sats {
		x, y, z, err := s.Propagator.PositionECEF(t)
		if err != nil {
			return nil, fmt.Errorf("topology: propagating satellite %d at %s: %w", s.ID, t, err)
		}
		snap.SatPos[s.ID] = geometry.Vector3{X: x, Y: y, Z: z}
	}

	for _, isl := range isls {
		d := geometry.Distance(snap.SatPos[isl.A], snap.SatPos[isl.B])
		if d > maxIslM {
			return nil, fmt.Errorf("topology: ISL (%d,%d) length %.3fm exceeds max_isl_length_m %.3fm at t=%s",
				isl.A, isl.B, d, maxIslM, t)
		}
		snap.ISLWeight[[2]SatId{isl.A, isl.B}] = d
		snap.ISLWeight[[2]SatId{isl.B, isl.A}] = d
		snap.ISLNeighbors[isl.A] = append(snap.ISLNeighbors[isl.A], isl.B)
		snap.ISLNeighbors[isl.B] = append(snap.ISLNeighbors[isl.B], isl.A)
	}
	for _, neighbors := range snap.ISLNeighbors {
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
	}

	for _, g := range groundStations {
		var inRange []GSLCandidate
		for _, s := range sats {
			d := geometry.Distance(snap.SatPos[s.ID], g.ECEF)
			if d <= maxGslM {
				inRange = append(inRange, GSLCandidate{Sat: s.ID, Distance: d})
			}
		}
		sort.Slice(inRange, func(i, j int) bool { return inRange[i].Sat < inRange[j].Sat })
		snap.InRangeSats[g.ID] = inRange
	}

	return snap, nil
}

// ToNodeId maps a ground station id into the unified node identifier space.
func ToNodeId(numSats int, g GroundId) NodeId { return NodeId(numSats + int(g)) }

// IsGroundNode reports whether a unified node id refers to a ground station.
func IsGroundNode(numSats int, n NodeId) bool { return int(n) >= numSats }
