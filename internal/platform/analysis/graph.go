package analysis

import (
	"fmt"
	"time"

	"github.com/asgard/satnet/internal/platform/apierrors"
	"github.com/asgard/satnet/internal/platform/geometry"
	"github.com/asgard/satnet/internal/platform/topology"
)

// GetPath walks next-hop pointers from src to dst in fstate, returning the
// full node sequence, or (nil, nil) on the first unreachable sentinel.
func GetPath(src, dst int, fstate Fstate) ([]int, error) {
	nextHop, ok := fstate[[2]int{src, dst}]
	if !ok {
		return nil, fmt.Errorf("analysis: no forwarding entry recorded for (%d,%d)", src, dst)
	}
	if nextHop == -1 {
		return nil, nil
	}

	path := []int{src}
	curr := src
	maxHops := len(fstate) + 1 // generous cycle guard; real bound is N_sat+N_gs
	for curr != dst {
		if len(path) > maxHops {
			return nil, fmt.Errorf("analysis: next-hop cycle detected walking from %d to %d", src, dst)
		}
		next, ok := fstate[[2]int{curr, dst}]
		if !ok {
			return nil, fmt.Errorf("analysis: no forwarding entry recorded for (%d,%d)", curr, dst)
		}
		if next == -1 {
			return nil, nil
		}
		path = append(path, next)
		curr = next
	}
	return path, nil
}

// ISLSet is a membership-tested representation of the declared ISL list,
// keyed low-id-first, used to validate that every satellite-satellite path
// hop is a declared ISL.
type ISLSet map[[2]int]bool

// NewISLSet builds the membership set from the declared ISL list.
func NewISLSet(isls []topology.ISL) ISLSet {
	s := make(ISLSet, len(isls))
	for _, isl := range isls {
		s[[2]int{int(isl.A), int(isl.B)}] = true
	}
	return s
}

func (s ISLSet) contains(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return s[[2]int{a, b}]
}

// SegmentDistance returns the live distance in meters for one path hop at
// time t, validating it against the same bound the hop's kind requires:
// a satellite-satellite hop must be a declared ISL within max_isl_length_m,
// a hop touching a ground station must be within max_gsl_length_m.
// Violations mean the analysis is replaying state inconsistent with the
// geometry and are fatal (GeometryViolationError), never silently skipped.
func SegmentDistance(t time.Time, numSat int, sats []topology.Satellite, grounds []topology.GroundStation,
	isls ISLSet, maxIslM, maxGslM float64, from, to int) (float64, error) {

	fromIsSat := from < numSat
	toIsSat := to < numSat

	switch {
	case fromIsSat && toIsSat:
		if !isls.contains(from, to) {
			return 0, apierrors.NewGeometryViolation(t.UnixNano(), fmt.Sprintf("hop %d->%d is not a declared ISL", from, to))
		}
		pa, err := satPos(sats, from, t)
		if err != nil {
			return 0, err
		}
		pb, err := satPos(sats, to, t)
		if err != nil {
			return 0, err
		}
		d := geometry.Distance(pa, pb)
		if d > maxIslM {
			return 0, apierrors.NewGeometryViolation(t.UnixNano(), fmt.Sprintf("ISL %d-%d length %.3fm exceeds max_isl_length_m %.3fm", from, to, d, maxIslM))
		}
		return d, nil

	case fromIsSat && !toIsSat:
		return groundSatDistance(t, sats, grounds, numSat, to, from, maxGslM)

	case !fromIsSat && toIsSat:
		return groundSatDistance(t, sats, grounds, numSat, from, to, maxGslM)

	default:
		return 0, fmt.Errorf("analysis: hops between ground stations are not permitted: %d -> %d", from, to)
	}
}

func groundSatDistance(t time.Time, sats []topology.Satellite, grounds []topology.GroundStation, numSat, groundNode, satID int, maxGslM float64) (float64, error) {
	gid := groundNode - numSat
	if gid < 0 || gid >= len(grounds) {
		return 0, fmt.Errorf("analysis: ground node id %d out of range", groundNode)
	}
	pa, err := satPos(sats, satID, t)
	if err != nil {
		return 0, err
	}
	d := geometry.Distance(pa, grounds[gid].ECEF)
	if d > maxGslM {
		return 0, apierrors.NewGeometryViolation(t.UnixNano(), fmt.Sprintf("GSL %d-%d distance %.3fm exceeds max_gsl_length_m %.3fm", groundNode, satID, d, maxGslM))
	}
	return d, nil
}

func satPos(sats []topology.Satellite, id int, t time.Time) (geometry.Vector3, error) {
	if id < 0 || id >= len(sats) {
		return geometry.Vector3{}, fmt.Errorf("analysis: satellite id %d out of range", id)
	}
	x, y, z, err := sats[id].Propagator.PositionECEF(t)
	if err != nil {
		return geometry.Vector3{}, fmt.Errorf("analysis: propagating satellite %d: %w", id, err)
	}
	return geometry.Vector3{X: x, Y: y, Z: z}, nil
}

// PathLength sums the live segment distances along path at time t, hop by
// hop, validating each against its kind's length bound.
func PathLength(t time.Time, numSat int, sats []topology.Satellite, grounds []topology.GroundStation,
	isls ISLSet, maxIslM, maxGslM float64, path []int) (float64, error) {

	if len(path) == 0 {
		return 0, nil
	}
	if len(path) == 1 {
		return 0, fmt.Errorf("analysis: path must have 0 or at least 2 nodes")
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		d, err := SegmentDistance(t, numSat, sats, grounds, isls, maxIslM, maxGslM, path[i-1], path[i])
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}
