package fstate

import (
	"math"
	"sort"

	"github.com/asgard/satnet/internal/platform/topology"
)

// floydWarshallISL computes all-pairs shortest distances between satellites
// over the ISL-only graph. Unreachable pairs hold +Inf.
func floydWarshallISL(numSat int, snap *topology.Snapshot) [][]float64 {
	dist := make([][]float64, numSat)
	for i := range dist {
		dist[i] = make([]float64, numSat)
		for j := range dist[i] {
			dist[i][j] = math.Inf(1)
		}
		dist[i][i] = 0
	}
	for a := 0; a < numSat; a++ {
		for _, b := range snap.ISLNeighbors[a] {
			if w, ok := snap.ISLWeight[[2]topology.SatId{topology.SatId(a), b}]; ok {
				dist[a][int(b)] = w
			}
		}
	}
	for k := 0; k < numSat; k++ {
		for i := 0; i < numSat; i++ {
			if math.IsInf(dist[i][k], 1) {
				continue
			}
			for j := 0; j < numSat; j++ {
				alt := dist[i][k] + dist[k][j]
				if alt < dist[i][j] {
					dist[i][j] = alt
				}
			}
		}
	}
	return dist
}

// primitiveAWithoutGSRelaying runs shortest paths over the ISL-only graph,
// with ground-station reachability mediated strictly through in-range
// satellites: every path looks like gs - sat - ... - sat - gs, never
// relaying through an intermediate ground station.
func primitiveAWithoutGSRelaying(numSat, numGs int, snap *topology.Snapshot, ifmap *topology.InterfaceMap, gidToSatGslIf []topology.IfaceIdx) *Table {
	table := NewTable(numSat, numGs)
	dist := floydWarshallISL(numSat, snap)

	// bestDistToGs[s][g] = min over candidates c in range of g of dist[s][c]+edge(c,g)
	// bestSatForGs[s][g] = the candidate satellite achieving that minimum.
	bestDistToGs := make([][]float64, numSat)
	bestSatForGs := make([][]topology.SatId, numSat)
	for s := 0; s < numSat; s++ {
		bestDistToGs[s] = make([]float64, numGs)
		bestSatForGs[s] = make([]topology.SatId, numGs)
		for g := 0; g < numGs; g++ {
			best := math.Inf(1)
			var bestSat topology.SatId = -1
			for _, cand := range snap.InRangeSats[g] {
				d := dist[s][int(cand.Sat)] + cand.Distance
				if d < best {
					best = d
					bestSat = cand.Sat
				}
			}
			bestDistToGs[s][g] = best
			bestSatForGs[s][g] = bestSat
		}
	}

	for g := 0; g < numGs; g++ {
		gid := topology.GroundId(g)
		for s := 0; s < numSat; s++ {
			current := topology.NodeId(s)
			if math.IsInf(bestDistToGs[s][g], 1) {
				table.Set(current, gid, Unreachable)
				continue
			}
			sStar := bestSatForGs[s][g]
			if sStar == topology.SatId(s) {
				table.Set(current, gid, ForwardingEntry{
					NextHop:  topology.ToNodeId(numSat, gid),
					OutIface: topology.IfaceIdx(ifmap.NumISLs(topology.SatId(s))) + gidToSatGslIf[g],
					InIface:  0,
				})
				continue
			}
			best := math.Inf(1)
			var bestN topology.SatId = -1
			for _, n := range snap.ISLNeighbors[s] {
				edge := snap.ISLWeight[[2]topology.SatId{topology.SatId(s), n}]
				d := edge + dist[int(n)][int(sStar)]
				if d < best {
					best = d
					bestN = n
				}
			}
			if bestN == -1 {
				table.Set(current, gid, Unreachable)
				continue
			}
			table.Set(current, gid, ForwardingEntry{
				NextHop:  topology.NodeId(bestN),
				OutIface: ifmap.IfaceFor(topology.SatId(s), bestN),
				InIface:  ifmap.IfaceFor(bestN, topology.SatId(s)),
			})
		}

		// ground-station-to-ground-station entries, a != b.
		for a := 0; a < numGs; a++ {
			if a == g {
				continue
			}
			aid := topology.GroundId(a)
			current := topology.ToNodeId(numSat, aid)
			best := math.Inf(1)
			var bestS topology.SatId = -1
			for _, cand := range snap.InRangeSats[a] {
				d := cand.Distance + bestDistToGs[int(cand.Sat)][g]
				if d < best {
					best = d
					bestS = cand.Sat
				}
			}
			if bestS == -1 || math.IsInf(best, 1) {
				table.Set(current, gid, Unreachable)
				continue
			}
			table.Set(current, gid, ForwardingEntry{
				NextHop:  topology.NodeId(bestS),
				OutIface: 0,
				InIface:  topology.IfaceIdx(ifmap.NumISLs(bestS)) + gidToSatGslIf[a],
			})
		}
	}
	return table
}

// combinedNeighbor is one edge out of a node in the ISL+GSL combined graph.
type combinedNeighbor struct {
	node topology.NodeId
	cost float64
}

// primitiveBWithGSRelaying runs shortest paths over the combined ISL+GSL
// graph (ground-station relaying permitted).
func primitiveBWithGSRelaying(numSat, numGs int, snap *topology.Snapshot, ifmap *topology.InterfaceMap, gidToSatGslIf []topology.IfaceIdx) *Table {
	n := numSat + numGs
	table := NewTable(numSat, numGs)

	neighbors := make([][]combinedNeighbor, n)
	for s := 0; s < numSat; s++ {
		for _, nb := range snap.ISLNeighbors[s] {
			w := snap.ISLWeight[[2]topology.SatId{topology.SatId(s), nb}]
			neighbors[s] = append(neighbors[s], combinedNeighbor{node: topology.NodeId(nb), cost: w})
		}
	}
	for g := 0; g < numGs; g++ {
		gNode := topology.ToNodeId(numSat, topology.GroundId(g))
		for _, cand := range snap.InRangeSats[g] {
			neighbors[gNode] = append(neighbors[gNode], combinedNeighbor{node: topology.NodeId(cand.Sat), cost: cand.Distance})
			neighbors[cand.Sat] = append(neighbors[cand.Sat], combinedNeighbor{node: gNode, cost: cand.Distance})
		}
	}
	for i := range neighbors {
		sort.Slice(neighbors[i], func(a, b int) bool { return neighbors[i][a].node < neighbors[i][b].node })
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = math.Inf(1)
		}
		dist[i][i] = 0
	}
	for i, edges := range neighbors {
		for _, e := range edges {
			dist[i][int(e.node)] = e.cost
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if math.IsInf(dist[i][k], 1) {
				continue
			}
			for j := 0; j < n; j++ {
				alt := dist[i][k] + dist[k][j]
				if alt < dist[i][j] {
					dist[i][j] = alt
				}
			}
		}
	}

	for g := 0; g < numGs; g++ {
		gid := topology.GroundId(g)
		dNode := topology.ToNodeId(numSat, gid)
		for c := 0; c < n; c++ {
			current := topology.NodeId(c)
			if current == dNode {
				continue
			}
			if math.IsInf(dist[c][int(dNode)], 1) {
				table.Set(current, gid, Unreachable)
				continue
			}
			best := math.Inf(1)
			var bestN topology.NodeId = -1
			for _, e := range neighbors[c] {
				d := e.cost + dist[int(e.node)][int(dNode)]
				if d < best {
					best = d
					bestN = e.node
				}
			}
			if bestN == -1 {
				table.Set(current, gid, Unreachable)
				continue
			}
			table.Set(current, gid, ForwardingEntry{
				NextHop:  bestN,
				OutIface: outIfaceFor(numSat, ifmap, gidToSatGslIf, current, bestN),
				InIface:  inIfaceFor(numSat, ifmap, gidToSatGslIf, current, bestN),
			})
		}
	}
	return table
}

func outIfaceFor(numSat int, ifmap *topology.InterfaceMap, gidToSatGslIf []topology.IfaceIdx, current, next topology.NodeId) topology.IfaceIdx {
	if int(current) < numSat && int(next) < numSat {
		return ifmap.IfaceFor(topology.SatId(current), topology.SatId(next))
	}
	if int(current) < numSat && int(next) >= numSat {
		g := int(next) - numSat
		return topology.IfaceIdx(ifmap.NumISLs(topology.SatId(current))) + gidToSatGslIf[g]
	}
	// ground station -> satellite: the ground station's sole iface.
	return 0
}

func inIfaceFor(numSat int, ifmap *topology.InterfaceMap, gidToSatGslIf []topology.IfaceIdx, current, next topology.NodeId) topology.IfaceIdx {
	if int(current) < numSat && int(next) < numSat {
		return ifmap.IfaceFor(topology.SatId(next), topology.SatId(current))
	}
	if int(current) >= numSat && int(next) < numSat {
		g := int(current) - numSat
		return topology.IfaceIdx(ifmap.NumISLs(topology.SatId(next))) + gidToSatGslIf[g]
	}
	// satellite -> ground station: the ground station's sole iface.
	return 0
}
