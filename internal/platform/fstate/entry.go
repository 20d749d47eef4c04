// Package fstate computes per-time-step forwarding state: the two shared
// shortest-path primitives, the four closed-set policy algorithms built on
// them, and delta emission against the previous step.
package fstate

import "github.com/asgard/satnet/internal/platform/topology"

// ForwardingEntry is one (next_hop, out_iface, in_iface) decision. An
// unreached destination is recorded as the drop sentinel Unreachable (-1,-1,-1).
type ForwardingEntry struct {
	NextHop  topology.NodeId
	OutIface topology.IfaceIdx
	InIface  topology.IfaceIdx
}

// Unreachable is the sentinel forwarding entry meaning "drop": no path
// exists from the current node to the destination at this time step.
var Unreachable = ForwardingEntry{NextHop: -1, OutIface: -1, InIface: -1}

func (e ForwardingEntry) isUnreachable() bool { return e == Unreachable }

// Table is the dense (current, destination-ground-station) -> entry matrix.
// Ground stations are the only meaningful destinations, so the table is
// sized (N_sat+N_gs) x N_gs rather than (N_sat+N_gs) x (N_sat+N_gs).
type Table struct {
	numSat, numGs int
	entries       []ForwardingEntry
}

// NewTable allocates a table with every entry set to Unreachable.
func NewTable(numSat, numGs int) *Table {
	t := &Table{numSat: numSat, numGs: numGs, entries: make([]ForwardingEntry, (numSat+numGs)*numGs)}
	for i := range t.entries {
		t.entries[i] = Unreachable
	}
	return t
}

func (t *Table) index(current topology.NodeId, dst topology.GroundId) int {
	return int(current)*t.numGs + int(dst)
}

// Get returns the current forwarding decision for (current, dst).
func (t *Table) Get(current topology.NodeId, dst topology.GroundId) ForwardingEntry {
	return t.entries[t.index(current, dst)]
}

// Set records a forwarding decision for (current, dst).
func (t *Table) Set(current topology.NodeId, dst topology.GroundId, e ForwardingEntry) {
	t.entries[t.index(current, dst)] = e
}

// CountUnreachable returns how many (current, dst) pairs currently hold the
// drop sentinel.
func (t *Table) CountUnreachable() int {
	n := 0
	for _, e := range t.entries {
		if e.isUnreachable() {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the table, used to seed the next
// step's "previous" snapshot before in-place updates.
func (t *Table) Clone() *Table {
	c := &Table{numSat: t.numSat, numGs: t.numGs, entries: make([]ForwardingEntry, len(t.entries))}
	copy(c.entries, t.entries)
	return c
}

// Diff returns, for every (current,dst) where next differs from prev (or
// prev is nil, meaning "everything is new"), the node/dst/entry triple in
// row-major order — the delta emitted to fstate_<t_ns>.txt.
func Diff(prev, next *Table) []struct {
	Current topology.NodeId
	Dst     topology.GroundId
	Entry   ForwardingEntry
} {
	var out []struct {
		Current topology.NodeId
		Dst     topology.GroundId
		Entry   ForwardingEntry
	}
	for i, e := range next.entries {
		current := topology.NodeId(i / next.numGs)
		dst := topology.GroundId(i % next.numGs)
		if prev == nil || prev.entries[i] != e {
			out = append(out, struct {
				Current topology.NodeId
				Dst     topology.GroundId
				Entry   ForwardingEntry
			}{current, dst, e})
		}
	}
	return out
}

// BwKey identifies one GSL interface bandwidth entry.
type BwKey struct {
	Node  topology.NodeId
	Iface topology.IfaceIdx
}

// BwTable is the (node, iface) -> bandwidth-share map.
type BwTable struct {
	values map[BwKey]float64
}

// NewBwTable allocates an empty bandwidth table.
func NewBwTable() *BwTable { return &BwTable{values: make(map[BwKey]float64)} }

func (b *BwTable) Get(k BwKey) (float64, bool) { v, ok := b.values[k]; return v, ok }
func (b *BwTable) Set(k BwKey, v float64)      { b.values[k] = v }

// Clone returns an independent copy.
func (b *BwTable) Clone() *BwTable {
	c := NewBwTable()
	for k, v := range b.values {
		c.values[k] = v
	}
	return c
}

// BwDiff returns every (key,value) pair in next that differs from prev (or
// is new if prev is nil), sorted by nothing in particular — callers sort by
// node/iface for deterministic file output.
func BwDiff(prev, next *BwTable) []struct {
	Key   BwKey
	Value float64
} {
	var out []struct {
		Key   BwKey
		Value float64
	}
	for k, v := range next.values {
		if prev == nil {
			out = append(out, struct {
				Key   BwKey
				Value float64
			}{k, v})
			continue
		}
		if pv, ok := prev.values[k]; !ok || pv != v {
			out = append(out, struct {
				Key   BwKey
				Value float64
			}{k, v})
		}
	}
	return out
}
