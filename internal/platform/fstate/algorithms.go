package fstate

import (
	"fmt"
	"sort"

	"github.com/asgard/satnet/internal/platform/apierrors"
	"github.com/asgard/satnet/internal/platform/topology"
)

// Algorithm is the closed set of forwarding-state policies. Each is a
// distinct combination of interface layout and which shared primitive it
// runs, dispatched once per time step.
type Algorithm string

const (
	FreeOneOverIsls          Algorithm = "free_one_only_over_isls"
	FreeGsOneSatManyOverIsls Algorithm = "free_gs_one_sat_many_only_over_isls"
	FreeOneOnlyGsRelays      Algorithm = "free_one_only_gs_relays"
	PairedManyOverIsls       Algorithm = "paired_many_only_over_isls"
)

// Inputs bundles the per-step data an algorithm needs: the current
// geometric snapshot, the static interface map, and the static per-node
// interface metadata (indexed by NodeId: satellites first, then ground
// stations).
type Inputs struct {
	NumSat, NumGs int
	Snapshot      *topology.Snapshot
	IfaceMap      *topology.InterfaceMap
	IfaceInfo     []topology.IfaceInfo // len NumSat+NumGs
	TimeNs        int64
	NumISLs       int // len(isls), used for the "ISL graph required/forbidden" preconditions
}

// StepOutput is what one algorithm invocation produces: the full forwarding
// and bandwidth tables (used to seed the next step), plus the delta lines
// that should actually be written to disk this step.
type StepOutput struct {
	FState       *Table
	Bw           *BwTable
	FstateDeltas []FstateLine
	BwDeltas     []BwLine
}

// FstateLine and BwLine are the exact rows the output file formats specify.
type FstateLine struct {
	Current, Dst, NextHop int
	OutIface, InIface     int
}

type BwLine struct {
	Node, Iface int
	Bandwidth   float64
}

// RunStep dispatches to the named algorithm and returns the new step output,
// diffed against the previous step's tables (nil prev tables on a shard's
// first step, which makes every entry "new").
func RunStep(alg Algorithm, in Inputs, prevFState *Table, prevBw *BwTable) (*StepOutput, error) {
	switch alg {
	case FreeOneOverIsls:
		return runFreeOneOverIsls(in, prevFState, prevBw)
	case FreeGsOneSatManyOverIsls:
		return runFreeGsOneSatManyOverIsls(in, prevFState, prevBw)
	case FreeOneOnlyGsRelays:
		return runFreeOneOnlyGsRelays(in, prevFState, prevBw)
	case PairedManyOverIsls:
		return runPairedManyOverIsls(in, prevFState, prevBw)
	default:
		return nil, apierrors.NewAlgorithmMismatch(string(alg), "unknown algorithm")
	}
}

func finalize(numSat, numGs int, table *Table, bw *BwTable, prevFState *Table, prevBw *BwTable) *StepOutput {
	out := &StepOutput{FState: table, Bw: bw}
	for _, d := range Diff(prevFState, table) {
		out.FstateDeltas = append(out.FstateDeltas, FstateLine{
			Current: int(d.Current), Dst: numSat + int(d.Dst),
			NextHop: int(d.Entry.NextHop), OutIface: int(d.Entry.OutIface), InIface: int(d.Entry.InIface),
		})
	}
	sort.Slice(out.FstateDeltas, func(i, j int) bool {
		if out.FstateDeltas[i].Current != out.FstateDeltas[j].Current {
			return out.FstateDeltas[i].Current < out.FstateDeltas[j].Current
		}
		return out.FstateDeltas[i].Dst < out.FstateDeltas[j].Dst
	})
	for _, d := range BwDiff(prevBw, bw) {
		out.BwDeltas = append(out.BwDeltas, BwLine{Node: int(d.Key.Node), Iface: int(d.Key.Iface), Bandwidth: d.Value})
	}
	sort.Slice(out.BwDeltas, func(i, j int) bool {
		if out.BwDeltas[i].Node != out.BwDeltas[j].Node {
			return out.BwDeltas[i].Node < out.BwDeltas[j].Node
		}
		return out.BwDeltas[i].Iface < out.BwDeltas[j].Iface
	})
	return out
}

func uniformGidToSatGslIf(numGs int, v topology.IfaceIdx) []topology.IfaceIdx {
	m := make([]topology.IfaceIdx, numGs)
	for i := range m {
		m[i] = v
	}
	return m
}

func perGsGidToSatGslIf(numGs int) []topology.IfaceIdx {
	m := make([]topology.IfaceIdx, numGs)
	for i := range m {
		m[i] = topology.IfaceIdx(i)
	}
	return m
}

// --- Algorithm 1: free_one_only_over_isls ---------------------------------

func runFreeOneOverIsls(in Inputs, prevFState *Table, prevBw *BwTable) (*StepOutput, error) {
	if in.NumISLs == 0 {
		return nil, apierrors.NewAlgorithmMismatch(string(FreeOneOverIsls), "ISL graph must be non-empty")
	}
	for s := 0; s < in.NumSat; s++ {
		want := in.IfaceMap.NumISLs(topology.SatId(s)) + 1
		if int(in.IfaceInfo[s].InterfaceCount) != want {
			return nil, apierrors.NewAlgorithmMismatch(string(FreeOneOverIsls),
				fmt.Sprintf("satellite %d must have %d interfaces (isls + 1 GSL), has %d", s, want, in.IfaceInfo[s].InterfaceCount))
		}
	}
	for g := 0; g < in.NumGs; g++ {
		if in.IfaceInfo[in.NumSat+g].InterfaceCount != 1 {
			return nil, apierrors.NewAlgorithmMismatch(string(FreeOneOverIsls),
				fmt.Sprintf("ground station %d must have exactly one interface, has %d", g, in.IfaceInfo[in.NumSat+g].InterfaceCount))
		}
	}

	gidToSatGslIf := uniformGidToSatGslIf(in.NumGs, 0)
	table := primitiveAWithoutGSRelaying(in.NumSat, in.NumGs, in.Snapshot, in.IfaceMap, gidToSatGslIf)

	bw := NewBwTable()
	if prevBw == nil {
		for s := 0; s < in.NumSat; s++ {
			iface := topology.IfaceIdx(in.IfaceMap.NumISLs(topology.SatId(s)))
			bw.Set(BwKey{Node: topology.NodeId(s), Iface: iface}, in.IfaceInfo[s].AggregateMaxBandwidth)
		}
		for g := 0; g < in.NumGs; g++ {
			node := topology.ToNodeId(in.NumSat, topology.GroundId(g))
			bw.Set(BwKey{Node: node, Iface: 0}, in.IfaceInfo[in.NumSat+g].AggregateMaxBandwidth)
		}
	} else {
		bw = prevBw.Clone()
	}

	return finalize(in.NumSat, in.NumGs, table, bw, prevFState, prevBw), nil
}

// --- Algorithm 2: free_gs_one_sat_many_only_over_isls ---------------------

func runFreeGsOneSatManyOverIsls(in Inputs, prevFState *Table, prevBw *BwTable) (*StepOutput, error) {
	if in.NumISLs == 0 {
		return nil, apierrors.NewAlgorithmMismatch(string(FreeGsOneSatManyOverIsls), "ISL graph must be non-empty")
	}
	for s := 0; s < in.NumSat; s++ {
		want := in.IfaceMap.NumISLs(topology.SatId(s)) + in.NumGs
		if int(in.IfaceInfo[s].InterfaceCount) != want {
			return nil, apierrors.NewAlgorithmMismatch(string(FreeGsOneSatManyOverIsls),
				fmt.Sprintf("satellite %d must have %d interfaces (isls + N_gs), has %d", s, want, in.IfaceInfo[s].InterfaceCount))
		}
		if in.IfaceInfo[s].AggregateMaxBandwidth != float64(in.NumGs) {
			return nil, apierrors.NewAlgorithmMismatch(string(FreeGsOneSatManyOverIsls),
				fmt.Sprintf("satellite %d aggregate bandwidth must equal N_gs=%d", s, in.NumGs))
		}
	}
	for g := 0; g < in.NumGs; g++ {
		info := in.IfaceInfo[in.NumSat+g]
		if info.InterfaceCount != 1 || info.AggregateMaxBandwidth != 1.0 {
			return nil, apierrors.NewAlgorithmMismatch(string(FreeGsOneSatManyOverIsls),
				fmt.Sprintf("ground station %d must have 1 interface and aggregate bandwidth 1.0", g))
		}
	}

	gidToSatGslIf := perGsGidToSatGslIf(in.NumGs)
	table := primitiveAWithoutGSRelaying(in.NumSat, in.NumGs, in.Snapshot, in.IfaceMap, gidToSatGslIf)

	bw := NewBwTable()
	if prevBw == nil {
		for s := 0; s < in.NumSat; s++ {
			numIsls := in.IfaceMap.NumISLs(topology.SatId(s))
			for g := 0; g < in.NumGs; g++ {
				bw.Set(BwKey{Node: topology.NodeId(s), Iface: topology.IfaceIdx(numIsls + g)},
					in.IfaceInfo[s].AggregateMaxBandwidth/float64(in.NumGs))
			}
		}
		for g := 0; g < in.NumGs; g++ {
			node := topology.ToNodeId(in.NumSat, topology.GroundId(g))
			bw.Set(BwKey{Node: node, Iface: 0}, in.IfaceInfo[in.NumSat+g].AggregateMaxBandwidth)
		}
	} else {
		bw = prevBw.Clone()
	}

	return finalize(in.NumSat, in.NumGs, table, bw, prevFState, prevBw), nil
}

// --- Algorithm 3: free_one_only_gs_relays ---------------------------------

func runFreeOneOnlyGsRelays(in Inputs, prevFState *Table, prevBw *BwTable) (*StepOutput, error) {
	if in.NumISLs != 0 {
		return nil, apierrors.NewAlgorithmMismatch(string(FreeOneOnlyGsRelays), "no satellite ISLs are permitted")
	}
	for s := 0; s < in.NumSat; s++ {
		if in.IfaceInfo[s].InterfaceCount != 1 {
			return nil, apierrors.NewAlgorithmMismatch(string(FreeOneOnlyGsRelays),
				fmt.Sprintf("satellite %d must have exactly one interface (GSL only), has %d", s, in.IfaceInfo[s].InterfaceCount))
		}
	}
	for g := 0; g < in.NumGs; g++ {
		if in.IfaceInfo[in.NumSat+g].InterfaceCount != 1 {
			return nil, apierrors.NewAlgorithmMismatch(string(FreeOneOnlyGsRelays),
				fmt.Sprintf("ground station %d must have exactly one interface, has %d", g, in.IfaceInfo[in.NumSat+g].InterfaceCount))
		}
	}

	gidToSatGslIf := uniformGidToSatGslIf(in.NumGs, 0)
	table := primitiveBWithGSRelaying(in.NumSat, in.NumGs, in.Snapshot, in.IfaceMap, gidToSatGslIf)

	bw := NewBwTable()
	if prevBw == nil {
		for s := 0; s < in.NumSat; s++ {
			bw.Set(BwKey{Node: topology.NodeId(s), Iface: 0}, in.IfaceInfo[s].AggregateMaxBandwidth)
		}
		for g := 0; g < in.NumGs; g++ {
			node := topology.ToNodeId(in.NumSat, topology.GroundId(g))
			bw.Set(BwKey{Node: node, Iface: 0}, in.IfaceInfo[in.NumSat+g].AggregateMaxBandwidth)
		}
	} else {
		bw = prevBw.Clone()
	}

	return finalize(in.NumSat, in.NumGs, table, bw, prevFState, prevBw), nil
}

// --- Algorithm 4: paired_many_only_over_isls -------------------------------

func runPairedManyOverIsls(in Inputs, prevFState *Table, prevBw *BwTable) (*StepOutput, error) {
	if in.NumISLs == 0 {
		return nil, apierrors.NewAlgorithmMismatch(string(PairedManyOverIsls), "ISL graph must be non-empty")
	}
	for s := 0; s < in.NumSat; s++ {
		want := in.IfaceMap.NumISLs(topology.SatId(s)) + in.NumGs
		if int(in.IfaceInfo[s].InterfaceCount) != want || in.IfaceInfo[s].AggregateMaxBandwidth != 1.0 {
			return nil, apierrors.NewAlgorithmMismatch(string(PairedManyOverIsls),
				fmt.Sprintf("satellite %d must have %d interfaces and aggregate bandwidth 1.0", s, want))
		}
	}
	for g := 0; g < in.NumGs; g++ {
		info := in.IfaceInfo[in.NumSat+g]
		if info.InterfaceCount != 1 || info.AggregateMaxBandwidth != 1.0 {
			return nil, apierrors.NewAlgorithmMismatch(string(PairedManyOverIsls),
				fmt.Sprintf("ground station %d must have 1 interface and aggregate bandwidth 1.0", g))
		}
	}

	pairedSat, freq, restricted := pairGroundStations(in.NumSat, in.NumGs, in.Snapshot)
	gidToSatGslIf := perGsGidToSatGslIf(in.NumGs)

	table := primitiveAWithoutGSRelaying(in.NumSat, in.NumGs, &topology.Snapshot{
		T: in.Snapshot.T, SatPos: in.Snapshot.SatPos, ISLNeighbors: in.Snapshot.ISLNeighbors,
		ISLWeight: in.Snapshot.ISLWeight, InRangeSats: restricted,
	}, in.IfaceMap, gidToSatGslIf)

	bw := NewBwTable()
	for s := 0; s < in.NumSat; s++ {
		numIsls := in.IfaceMap.NumISLs(topology.SatId(s))
		for g := 0; g < in.NumGs; g++ {
			iface := topology.IfaceIdx(numIsls + g)
			if pairedSat[g] == topology.SatId(s) {
				bw.Set(BwKey{Node: topology.NodeId(s), Iface: iface}, 1.0/float64(freq[s]))
			} else {
				bw.Set(BwKey{Node: topology.NodeId(s), Iface: iface}, 1.0)
			}
		}
	}
	for g := 0; g < in.NumGs; g++ {
		node := topology.ToNodeId(in.NumSat, topology.GroundId(g))
		if pairedSat[g] != -1 {
			bw.Set(BwKey{Node: node, Iface: 0}, 1.0/float64(freq[pairedSat[g]]))
		} else {
			bw.Set(BwKey{Node: node, Iface: 0}, 1.0)
		}
	}

	return finalize(in.NumSat, in.NumGs, table, bw, prevFState, prevBw), nil
}

// pairGroundStations picks, for every ground station, its single nearest
// in-range satellite, and builds the restricted in-range lists Primitive A
// must see (a singleton list per ground station, or empty if unreachable).
func pairGroundStations(numSat, numGs int, snap *topology.Snapshot) (pairedSat []topology.SatId, freq []int, restricted [][]topology.GSLCandidate) {
	pairedSat = make([]topology.SatId, numGs)
	freq = make([]int, numSat)
	restricted = make([][]topology.GSLCandidate, numGs)

	for g := 0; g < numGs; g++ {
		pairedSat[g] = -1
		best := -1.0
		var bestSat topology.SatId = -1
		for _, cand := range snap.InRangeSats[g] {
			if bestSat == -1 || cand.Distance < best {
				best = cand.Distance
				bestSat = cand.Sat
			}
		}
		if bestSat != -1 {
			pairedSat[g] = bestSat
			freq[bestSat]++
			restricted[g] = []topology.GSLCandidate{{Sat: bestSat, Distance: best}}
		}
	}
	return pairedSat, freq, restricted
}
